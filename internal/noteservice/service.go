// Package noteservice coordinates vault storage, the note index, and the
// derived-field registry behind one service type.
package noteservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/storage"
)

// NoteDetail is the full representation of a note. Fields holds the
// current value(s) of every registered derived field; absent fields map
// to empty slices.
type NoteDetail struct {
	Path        string           `json:"path"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Checksum    string           `json:"checksum"`
	Tags        []string         `json:"tags"`
	Frontmatter map[string]any   `json:"frontmatter,omitempty"`
	Backlinks   []string         `json:"backlinks"`
	Fields      map[string][]any `json:"fields,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, index, and field operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	fields *field.Registry
}

// NewService creates a new note service. fields may be nil when derived
// fields are not in play (some tests).
func NewService(store storage.Provider, db *index.DB, fields *field.Registry) *Service {
	return &Service{store: store, db: db, fields: fields}
}

// GetNote reads a note from storage, parses it, and enriches it with
// backlinks and derived field values.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and index. Derived field rows
// cascade away with the notes row.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteNote(path)
}

// ListNotes returns paginated notes with optional tag filter.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns all nodes and links for graph visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns all note paths that link to the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// FieldNames returns the registered derived field names in dispatch order.
func (s *Service) FieldNames() []string {
	if s.fields == nil {
		return []string{}
	}
	return s.fields.Fields()
}

// QueryField returns the stored value(s) of one derived field for one
// note. An unindexed note is ErrNotFound; an unregistered field surfaces
// field.ErrUnknownField.
func (s *Service) QueryField(_ context.Context, name, path string) ([]any, error) {
	if s.fields == nil {
		return nil, field.ErrUnknownField
	}
	id, err := s.db.NoteID(path)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.ErrNotFound
	}
	return s.fields.Query(name, &models.Note{ID: id, Path: path})
}

// IndexFile parses data, upserts it into the index, and dispatches the
// note to the derived-field registry.
func (s *Service) IndexFile(path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	cs := checksum.Sum(data)
	now := time.Now()
	id, err := s.db.UpsertNote(index.NoteRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  cs,
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: now,
	}, res.Body, res.Links)
	if err != nil {
		return err
	}
	if s.fields != nil {
		s.fields.Dispatch(&models.Note{
			ID:          id,
			Path:        path,
			Body:        res.Body,
			Frontmatter: res.Frontmatter,
			Title:       res.Title,
			Links:       res.Links,
			Tags:        res.Tags,
			Checksum:    cs,
			UpdatedAt:   now,
		})
	}
	return nil
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}

	fields := map[string][]any{}
	if s.fields != nil {
		if id, err := s.db.NoteID(path); err == nil && id != "" {
			n := &models.Note{ID: id, Path: path}
			for _, name := range s.fields.Fields() {
				vals, err := s.fields.Query(name, n)
				if err != nil {
					return nil, err
				}
				fields[name] = vals
			}
		}
	}

	return &NoteDetail{
		Path:        path,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   nonNilSlice(bl),
		Fields:      fields,
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
