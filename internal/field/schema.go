package field

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Schema describes the value column of a field table. The note_id key
// column and its cascading foreign key are fixed and not configurable.
type Schema struct {
	// Type is the SQL type of the field column, e.g. "INTEGER" or "TEXT".
	Type string
}

// Index declares one secondary index over a field table, created once at
// definition time alongside the table.
type Index struct {
	Name string // suffix for the index name
	Expr string // indexed column expression, normally "field"
}

var (
	nameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)
	typeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ()]*$`)
	exprRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_, ()]*$`)
)

// Validate checks the schema's value column type.
func (s Schema) Validate() error {
	return validation.Validate(s.Type, validation.Required, validation.Match(typeRe))
}

// Validate checks the index name and column expression.
func (i Index) Validate() error {
	if err := validation.Validate(i.Name, validation.Required, validation.Match(nameRe)); err != nil {
		return fmt.Errorf("index name: %w", err)
	}
	if err := validation.Validate(i.Expr, validation.Required, validation.Match(exprRe)); err != nil {
		return fmt.Errorf("index expr: %w", err)
	}
	return nil
}

func validateName(name string) error {
	return validation.Validate(name, validation.Required, validation.Match(nameRe))
}

// versionsSchemaSQL records the schema version each field was defined at.
const versionsSchemaSQL = `
CREATE TABLE IF NOT EXISTS field_versions (
	name    TEXT PRIMARY KEY,
	version INTEGER NOT NULL
);
`

// Define ensures the named field's table and indices exist before any
// synchronization activity for it. It is idempotent: repeating a
// definition at the same version is a no-op. A definition at a different
// version fails with ErrSchemaConflict — field tables are derived caches,
// so the recovery path after a deliberate version bump is dropping the
// table out of band and re-syncing the vault.
//
// The table is named field_<name>, keyed by note_id with a cascading
// foreign key to notes(id): field rows disappear with their note, no
// caller action required.
func (r *Registry) Define(name string, version int, schema Schema, indices []Index) error {
	if err := validateName(name); err != nil {
		return fmt.Errorf("field: define %q: %w", name, err)
	}
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("field: define %q: %w", name, err)
	}
	for _, idx := range indices {
		if err := idx.Validate(); err != nil {
			return fmt.Errorf("field: define %q: %w", name, err)
		}
	}

	if _, err := r.db.Exec(versionsSchemaSQL); err != nil {
		return fmt.Errorf("field: ensure version table: %w", err)
	}

	var prior int
	err := r.db.QueryRow(`SELECT version FROM field_versions WHERE name = ?`, name).Scan(&prior)
	switch {
	case err == nil && prior != version:
		return fmt.Errorf("field: define %q: %w: have v%d, want v%d", name, ErrSchemaConflict, prior, version)
	case err != nil:
		if _, err := r.db.Exec(`INSERT INTO field_versions (name, version) VALUES (?, ?)`, name, version); err != nil {
			return fmt.Errorf("field: record version for %q: %w", name, err)
		}
	}

	table := tableName(name)
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			note_id TEXT PRIMARY KEY REFERENCES notes(id) ON DELETE CASCADE,
			field   %s
		)`, table, schema.Type)
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("field: create table for %q: %w", name, err)
	}

	for _, idx := range indices {
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)`,
			table, idx.Name, table, idx.Expr)
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("field: create index %s for %q: %w", idx.Name, name, err)
		}
	}

	r.tables[name] = table
	return nil
}

// tableName maps a validated field name to its storage table. Only names
// that passed validateName ever reach this point.
func tableName(name string) string {
	return "field_" + name
}
