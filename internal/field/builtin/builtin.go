// Package builtin provides the derived fields that ship with Laguz. Each
// is a thin adapter over the field core: a Define call fixing the table
// schema and a Descriptor computing the value from parsed note content.
package builtin

import (
	"fmt"
	"slices"

	"github.com/starford/laguz/internal/field"
)

// registration defines and registers one built-in field.
type registration struct {
	name string
	fn   func(*field.Registry) error
}

var all = []registration{
	{"word_count", RegisterWordCount},
	{"status", RegisterStatus},
	{"created", RegisterCreated},
	{"link_count", RegisterLinkCount},
}

// Names returns every built-in field name.
func Names() []string {
	out := make([]string, len(all))
	for i, reg := range all {
		out[i] = reg.name
	}
	return out
}

// RegisterAll wires every built-in field except those listed in disabled.
// Unknown names in disabled are a configuration error.
func RegisterAll(reg *field.Registry, disabled []string) error {
	known := Names()
	for _, name := range disabled {
		if !slices.Contains(known, name) {
			return fmt.Errorf("builtin: unknown field in disabled list: %q", name)
		}
	}
	for _, r := range all {
		if slices.Contains(disabled, r.name) {
			continue
		}
		if err := r.fn(reg); err != nil {
			return err
		}
	}
	return nil
}
