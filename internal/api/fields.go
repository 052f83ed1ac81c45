package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/field"
)

// ListFields handles GET /api/fields.
//
//	@Summary		List registered derived fields
//	@Tags			fields
//	@Produce		json
//	@Success		200	{object}	FieldListResponse
//	@Security		BearerAuth
//	@Router			/fields [get]
func (h *Handler) ListFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fields": h.svc.FieldNames(),
	})
}

// GetFieldValues handles GET /api/fields/{name}?path=.
//
//	@Summary		Get a derived field's value(s) for a note
//	@Tags			fields
//	@Produce		json
//	@Param			name	path		string	true	"Field name"
//	@Param			path	query		string	true	"Note path"
//	@Success		200		{object}	FieldValuesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/fields/{name} [get]
func (h *Handler) GetFieldValues(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}

	values, err := h.svc.QueryField(r.Context(), name, path)
	if err != nil {
		switch {
		case errors.Is(err, field.ErrUnknownField):
			writeJSON(w, http.StatusNotFound, errorBody("unknown field"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("query field failed",
				slog.String("field", name),
				slog.String("path", path),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":  name,
		"path":   path,
		"values": values,
	})
}
