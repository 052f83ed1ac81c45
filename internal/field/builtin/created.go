package builtin

import (
	"fmt"
	"time"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
)

// createdLayouts are the accepted frontmatter date formats, tried in order.
var createdLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// RegisterCreated wires the created field, taken from the "created"
// frontmatter key and normalised to RFC 3339. A malformed date surfaces
// as a sync warning, not a hard failure.
func RegisterCreated(reg *field.Registry) error {
	err := reg.Define("created", 1,
		field.Schema{Type: "TEXT"},
		[]field.Index{{Name: "value", Expr: "field"}})
	if err != nil {
		return err
	}
	return reg.Register("created", created{})
}

type created struct{}

func (created) Test(n *models.Note) bool {
	_, ok := n.Frontmatter["created"]
	return ok
}

func (created) Extract(n *models.Note) (any, bool) {
	raw, ok := n.Frontmatter["created"]
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

func (created) Transform(_ *models.Note, datum any) (any, error) {
	switch v := datum.(type) {
	case time.Time:
		// yaml.v3 decodes unquoted dates directly.
		return v.UTC().Format(time.RFC3339), nil
	case string:
		for _, layout := range createdLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format(time.RFC3339), nil
			}
		}
		return nil, fmt.Errorf("unparseable created date %q", v)
	default:
		return nil, fmt.Errorf("created must be a date or string, got %T", datum)
	}
}
