package builtin

import (
	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
)

// RegisterLinkCount wires the link_count field: the number of outgoing
// wikilinks, absent when the note links nowhere.
func RegisterLinkCount(reg *field.Registry) error {
	err := reg.Define("link_count", 1, field.Schema{Type: "INTEGER"}, nil)
	if err != nil {
		return err
	}
	return reg.Register("link_count", linkCount{})
}

type linkCount struct{}

func (linkCount) Test(*models.Note) bool { return true }

func (linkCount) Extract(n *models.Note) (any, bool) {
	if len(n.Links) == 0 {
		return nil, false
	}
	return len(n.Links), true
}

func (linkCount) Transform(_ *models.Note, datum any) (any, error) {
	return datum, nil
}
