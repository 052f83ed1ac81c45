package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/storage"
)

// titleLen is a minimal descriptor for sync tests: the length of the
// note title, absent for untitled notes.
type titleLen struct{}

func (titleLen) Test(*models.Note) bool { return true }

func (titleLen) Extract(n *models.Note) (any, bool) {
	if n.Title == "" {
		return nil, false
	}
	return len(n.Title), true
}

func (titleLen) Transform(_ *models.Note, datum any) (any, error) { return datum, nil }

func syncTestEnv(t *testing.T) (string, storage.Provider, *DB, *field.Registry) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)

	fields := field.New(db.Conn(), nil)
	if err := fields.Define("title_len", 1, field.Schema{Type: "INTEGER"}, nil); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := fields.Register("title_len", titleLen{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return vaultDir, store, db, fields
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSync_IndexesAndDispatchesFields(t *testing.T) {
	vaultDir, store, db, fields := syncTestEnv(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "a.md"), []byte("# Alpha\nbody"), 0o644)

	if err := Sync(db, store, fields, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	id, err := db.NoteID("a.md")
	if err != nil || id == "" {
		t.Fatalf("note not indexed: id=%q err=%v", id, err)
	}
	vals, err := fields.Query("title_len", &models.Note{ID: id})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(vals) != 1 || vals[0] != int64(len("Alpha")) {
		t.Errorf("title_len = %v, want [5]", vals)
	}
}

func TestSync_RemovesStaleNotesAndCascadesFields(t *testing.T) {
	vaultDir, store, db, fields := syncTestEnv(t)

	path := filepath.Join(vaultDir, "gone.md")
	_ = os.WriteFile(path, []byte("# Gone"), 0o644)
	if err := Sync(db, store, fields, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	id, _ := db.NoteID("gone.md")
	if id == "" {
		t.Fatal("precondition: note should be indexed")
	}

	_ = os.Remove(path)
	if err := Sync(db, store, fields, quietLogger()); err != nil {
		t.Fatalf("Sync after remove: %v", err)
	}

	if got, _ := db.NoteID("gone.md"); got != "" {
		t.Error("stale note still indexed")
	}
	vals, err := fields.Query("title_len", &models.Note{ID: id})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("field rows survived note deletion: %v", vals)
	}
}

func TestSync_UnchangedFilesSkipped(t *testing.T) {
	vaultDir, store, db, _ := syncTestEnv(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "same.md"), []byte("# Same"), 0o644)
	if err := Sync(db, store, nil, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	id1, _ := db.NoteID("same.md")

	// Second pass sees matching checksums and must not re-assign ids.
	if err := Sync(db, store, nil, quietLogger()); err != nil {
		t.Fatalf("Sync again: %v", err)
	}
	id2, _ := db.NoteID("same.md")
	if id1 != id2 {
		t.Errorf("id changed on no-op sync: %q -> %q", id1, id2)
	}
}

func TestIndexNote_SingleEntryPoint(t *testing.T) {
	_, _, db, fields := syncTestEnv(t)

	if err := IndexNote(db, fields, "direct.md", []byte("# Direct")); err != nil {
		t.Fatalf("IndexNote: %v", err)
	}
	id, _ := db.NoteID("direct.md")
	if id == "" {
		t.Fatal("note not indexed")
	}
	vals, err := fields.Query("title_len", &models.Note{ID: id})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(vals) != 1 {
		t.Errorf("title_len = %v, want one value", vals)
	}
}

// Malformed frontmatter falls back to body-only parsing; the note is
// still indexed and dispatched.
func TestSync_MalformedFrontmatterStillIndexed(t *testing.T) {
	vaultDir, store, db, fields := syncTestEnv(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "bad.md"), []byte("---\n: : :\n---\n# Bad"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "good.md"), []byte("# Good"), 0o644)

	if err := Sync(db, store, fields, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if id, _ := db.NoteID("good.md"); id == "" {
		t.Error("good file should be indexed")
	}
	if id, _ := db.NoteID("bad.md"); id == "" {
		t.Error("note with malformed frontmatter should still be indexed")
	}
}

