package builtin

import (
	"strings"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
)

// RegisterWordCount wires the word_count field: the number of
// whitespace-separated words in the note body. Notes with an empty body
// have no value rather than a zero.
func RegisterWordCount(reg *field.Registry) error {
	err := reg.Define("word_count", 1,
		field.Schema{Type: "INTEGER"},
		[]field.Index{{Name: "value", Expr: "field"}})
	if err != nil {
		return err
	}
	return reg.Register("word_count", wordCount{})
}

type wordCount struct{}

func (wordCount) Test(*models.Note) bool { return true }

func (wordCount) Extract(n *models.Note) (any, bool) {
	words := len(strings.Fields(n.Body))
	if words == 0 {
		return nil, false
	}
	return words, true
}

func (wordCount) Transform(_ *models.Note, datum any) (any, error) {
	return datum, nil
}
