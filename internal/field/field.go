// Package field implements derived field tables: secondary, per-note
// columns computed from note content and kept in sync with the vault.
//
// A field is defined by a Descriptor (does this note participate, what is
// the raw datum, how is it encoded for storage) and lives in its own
// SQLite table keyed by note id. The Registry fans every note
// synchronization event out to all registered fields; a failure in one
// field is reported through the Reporter and never disturbs the others.
package field

import (
	"errors"

	"github.com/starford/laguz/internal/models"
)

var (
	// ErrSchemaConflict is returned by Define when the field was previously
	// defined at a different schema version.
	ErrSchemaConflict = errors.New("field schema version conflict")

	// ErrUnknownField is returned by Register and Query for names that were
	// never defined.
	ErrUnknownField = errors.New("unknown field")
)

// Descriptor computes one field's value for a note. Implementations are
// created once at startup and never mutated afterwards.
type Descriptor interface {
	// Test reports whether the note participates in this field at all.
	Test(n *models.Note) bool
	// Extract returns the field's raw datum for the note. ok is false when
	// the note participates but genuinely has no value.
	Extract(n *models.Note) (datum any, ok bool)
	// Transform encodes the raw datum into the storable value.
	Transform(n *models.Note, datum any) (any, error)
}

// Warning describes one failed field synchronization. It carries enough
// context to locate the offending note without consulting the database.
type Warning struct {
	Field     string
	Datum     any
	NoteID    string
	NoteTitle string
	NotePath  string
	Err       error
}

// Reporter receives warnings for failed synchronizations. It must not
// panic; dispatch continues regardless of what the reporter does.
type Reporter func(w Warning)
