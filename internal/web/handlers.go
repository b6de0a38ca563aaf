package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/web/templates"
)

// handleIndex renders the collection page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseViewRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data := templates.PageData{
		Title:         s.cfg.Viewer.Title,
		Query:         req.Query,
		Region:        req.Region,
		Photos:        req.Photos,
		UploadEnabled: s.cfg.Upload.Enabled,
	}

	view, err := s.service.Query(req)
	switch {
	case errors.Is(err, core.ErrNoData):
		data.Table = s.statusTable()
	case err != nil:
		respondError(w, r, err, statusFor(err))
		return
	default:
		data.Regions = view.Regions
		data.Source = view.Source
		data.LoadedAt = view.LoadedAt
		data.Table = s.buildTable(view)
	}

	render(w, r, templates.Page(data))
}

// handleTable renders the table partial for in-place refresh. htmx requests
// get the matching page URL pushed so reloads and links keep the view.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseViewRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", s.viewURL("/", req))
	}

	view, err := s.service.Query(req)
	switch {
	case errors.Is(err, core.ErrNoData):
		render(w, r, templates.Table(s.statusTable()))
	case err != nil:
		respondError(w, r, err, statusFor(err))
	default:
		render(w, r, templates.Table(s.buildTable(view)))
	}
}

// render writes an HTML component. Errors after the first byte can only be
// logged.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render failed", "path", r.URL.Path, "error", err)
	}
}
