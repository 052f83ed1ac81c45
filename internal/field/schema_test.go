package field_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/testutil"
)

func intSchema() field.Schema { return field.Schema{Type: "INTEGER"} }

func TestDefine_CreatesTable(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	require.NoError(t, reg.Define("word_count", 1, intSchema(), nil))

	var n int
	err := db.Conn().QueryRow(`SELECT count(*) FROM field_word_count`).Scan(&n)
	require.NoError(t, err, "field table should exist")
	assert.Equal(t, 0, n)
}

func TestDefine_IdempotentAtSameVersion(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	require.NoError(t, reg.Define("status", 2, field.Schema{Type: "TEXT"}, nil))
	assert.NoError(t, reg.Define("status", 2, field.Schema{Type: "TEXT"}, nil))
}

func TestDefine_VersionConflict(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	require.NoError(t, reg.Define("status", 1, field.Schema{Type: "TEXT"}, nil))
	err := reg.Define("status", 2, field.Schema{Type: "TEXT"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, field.ErrSchemaConflict)
	assert.Contains(t, err.Error(), "have v1, want v2")
}

func TestDefine_RejectsBadNames(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	for _, name := range []string{
		"",
		"Uppercase",
		"1starts_with_digit",
		"has-dash",
		"semi;colon",
		`quote"name`,
		"drop table notes",
	} {
		assert.Error(t, reg.Define(name, 1, intSchema(), nil), "name %q should be rejected", name)
	}
}

func TestDefine_RejectsBadSchemaType(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	assert.Error(t, reg.Define("ok_name", 1, field.Schema{Type: ""}, nil))
	assert.Error(t, reg.Define("ok_name", 1, field.Schema{Type: "TEXT; DROP TABLE notes"}, nil))
}

func TestDefine_WithIndices(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t, db, nil)

	err := reg.Define("created", 1, field.Schema{Type: "TEXT"},
		[]field.Index{{Name: "value", Expr: "field"}})
	require.NoError(t, err)

	var n int
	err = db.Conn().QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_field_created_value'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "secondary index should exist")

	assert.Error(t, reg.Define("other", 1, intSchema(),
		[]field.Index{{Name: "bad", Expr: "field); DROP TABLE notes; --"}}))
}

// seedNote indexes a minimal note and returns its id, so field rows have
// a valid foreign-key target.
func seedNote(t *testing.T, db *index.DB, path, body string) string {
	t.Helper()
	id, err := db.UpsertNote(index.NoteRow{
		Path:      path,
		Title:     path,
		Checksum:  "cs-" + path,
		Tags:      []string{},
		UpdatedAt: time.Now(),
	}, body, nil)
	require.NoError(t, err)
	return id
}
