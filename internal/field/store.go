package field

import (
	"fmt"

	"github.com/starford/laguz/internal/models"
)

// syncField performs the delete-then-conditional-insert write for one
// field/note pair. Delete first, unconditionally: that one statement
// covers the note no longer qualifying, the note having no datum, and the
// re-insert case, without an explicit "row exists" branch. The returned
// datum (when extracted) goes into the Warning on failure.
func (r *Registry) syncField(b binding, n *models.Note) (datum any, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM `+b.table+` WHERE note_id = ?`, n.ID); err != nil {
		return nil, fmt.Errorf("delete row: %w", err)
	}

	if !b.desc.Test(n) {
		return nil, tx.Commit()
	}

	datum, ok := b.desc.Extract(n)
	if !ok {
		return nil, tx.Commit()
	}

	value, err := b.desc.Transform(n, datum)
	if err != nil {
		return datum, fmt.Errorf("transform: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO `+b.table+` (note_id, field) VALUES (?, ?)`, n.ID, value); err != nil {
		return datum, fmt.Errorf("insert row: %w", err)
	}

	return datum, tx.Commit()
}

// Query returns all stored values for the note in the named field's
// table. With the default schema that is zero or one value, but the
// contract stays a slice for caller-defined schemas with relaxed
// uniqueness. No rows is an empty slice, not an error; a missing field
// definition or a failing query is a real error — callers must be able to
// tell "no value" from "could not read".
func (r *Registry) Query(name string, n *models.Note) ([]any, error) {
	table, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("field: query %q: %w", name, ErrUnknownField)
	}

	rows, err := r.db.Query(`SELECT field FROM `+table+` WHERE note_id = ?`, n.ID)
	if err != nil {
		return nil, fmt.Errorf("field: query %q: %w", name, err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("field: query %q: scan: %w", name, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
