package builtin

import (
	"fmt"
	"strings"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
)

// RegisterStatus wires the status field, taken from the "status"
// frontmatter key and stored lowercased.
func RegisterStatus(reg *field.Registry) error {
	err := reg.Define("status", 1,
		field.Schema{Type: "TEXT"},
		[]field.Index{{Name: "value", Expr: "field"}})
	if err != nil {
		return err
	}
	return reg.Register("status", status{})
}

type status struct{}

func (status) Test(n *models.Note) bool {
	_, ok := n.Frontmatter["status"]
	return ok
}

func (status) Extract(n *models.Note) (any, bool) {
	raw, ok := n.Frontmatter["status"]
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

func (status) Transform(_ *models.Note, datum any) (any, error) {
	s, ok := datum.(string)
	if !ok {
		return nil, fmt.Errorf("status must be a string, got %T", datum)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("status is empty")
	}
	return s, nil
}
