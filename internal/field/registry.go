package field

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/starford/laguz/internal/models"
)

// binding pairs a field name with its descriptor. Invocation order during
// Dispatch follows registration order.
type binding struct {
	name  string
	table string
	desc  Descriptor
}

// Registry holds the process-wide set of derived fields and fans note
// synchronization events out to them.
//
// Define and Register are setup-time calls: the binding list is
// append-only and must be fully populated before Dispatch traffic starts.
// Concurrent Register during active Dispatch is not supported.
type Registry struct {
	db       *sql.DB
	report   Reporter
	tables   map[string]string // defined field name -> table name
	bindings []binding
}

// New creates a registry over the given database. report receives a
// Warning for every failed synchronization; nil disables reporting.
func New(db *sql.DB, report Reporter) *Registry {
	return &Registry{
		db:     db,
		report: report,
		tables: make(map[string]string),
	}
}

// SlogReporter returns a Reporter that logs warnings through logger,
// matching the sync loop's warn-and-continue style.
func SlogReporter(logger *slog.Logger) Reporter {
	return func(w Warning) {
		logger.Warn("field: sync failed",
			slog.String("field", w.Field),
			slog.Any("datum", w.Datum),
			slog.String("note_id", w.NoteID),
			slog.String("title", w.NoteTitle),
			slog.String("path", w.NotePath),
			slog.String("error", w.Err.Error()))
	}
}

// Register appends a binding for a previously defined field. Fields are
// independent by design: registration order fixes dispatch order but must
// have no observable effect on any field's contents.
func (r *Registry) Register(name string, d Descriptor) error {
	table, ok := r.tables[name]
	if !ok {
		return fmt.Errorf("field: register %q: %w (call Define first)", name, ErrUnknownField)
	}
	for _, b := range r.bindings {
		if b.name == name {
			return fmt.Errorf("field: register %q: already registered", name)
		}
	}
	r.bindings = append(r.bindings, binding{name: name, table: table, desc: d})
	return nil
}

// Fields returns the registered field names in dispatch order.
func (r *Registry) Fields() []string {
	out := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.name
	}
	return out
}

// Dispatch synchronizes every registered field against the note. Each
// field runs in its own local transaction; a failure is converted into a
// Warning and the remaining fields still run. Dispatch never fails —
// derived fields must not be able to interrupt the note sync flow.
func (r *Registry) Dispatch(n *models.Note) {
	for _, b := range r.bindings {
		datum, err := r.syncField(b, n)
		if err == nil {
			continue
		}
		if r.report != nil {
			r.report(Warning{
				Field:     b.name,
				Datum:     datum,
				NoteID:    n.ID,
				NoteTitle: n.Title,
				NotePath:  n.Path,
				Err:       err,
			})
		}
	}
}
