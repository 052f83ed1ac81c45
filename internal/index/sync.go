package index

import (
	"log/slog"
	"time"

	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed, upserted, and dispatched to the
//     derived-field registry
//   - files removed from disk are deleted from the index (field rows
//     cascade away with them)
func Sync(db *DB, store storage.Provider, fields *field.Registry, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, fields, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data, upserts it into the DB, and fans the resulting
// note out to every registered derived field. Field failures are isolated
// inside Dispatch and never surface here.
func indexFile(db *DB, fields *field.Registry, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	cs := checksum.Sum(data)

	row := NoteRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  cs,
		Tags:      res.Tags,
		UpdatedAt: time.Now(),
	}
	id, err := db.UpsertNote(row, res.Body, res.Links)
	if err != nil {
		return err
	}

	if fields != nil {
		fields.Dispatch(&models.Note{
			ID:          id,
			Path:        path,
			Body:        res.Body,
			Frontmatter: res.Frontmatter,
			Title:       res.Title,
			Links:       res.Links,
			Tags:        res.Tags,
			Checksum:    cs,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return nil
}

// IndexNote parses data, upserts it into the index, and dispatches the
// note to the derived-field registry. Single-note entry point for callers
// outside the sync loop (MCP server).
func IndexNote(db *DB, fields *field.Registry, path string, data []byte) error {
	return indexFile(db, fields, path, data)
}
