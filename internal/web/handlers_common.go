package web

// handlers_common.go contains shared utilities used across handlers.

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/web/templates"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// parseViewRequest decodes the view parameters of the query string. Absent
// parameters keep their defaults.
func (s *Server) parseViewRequest(r *http.Request) (core.ViewRequest, error) {
	req := core.ViewRequest{Photos: s.cfg.Viewer.PhotosDefault}
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		return core.ViewRequest{}, fmt.Errorf("invalid view request: %w", err)
	}
	return req, nil
}

// viewURL links to path showing req. Photos are spelled out when they differ
// from the configured default, since an absent parameter means the default.
func (s *Server) viewURL(path string, req core.ViewRequest) string {
	v := req.Values()
	if s.cfg.Viewer.PhotosDefault && !req.Photos {
		v.Set("photos", "false")
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// photoURL returns the photo link of a specimen, or "" without identifier.
func (s *Server) photoURL(id string) string {
	if id == "" {
		return ""
	}
	return "/img/" + url.PathEscape(id+s.cfg.Viewer.PhotoExt)
}

// tableColumns returns the displayed columns. The photo column is hidden
// unless requested.
func tableColumns(photos bool) []catalog.Field {
	cols := catalog.Columns()
	if photos {
		return cols
	}
	out := make([]catalog.Field, 0, len(cols)-1)
	for _, f := range cols {
		if f != catalog.FieldPhoto {
			out = append(out, f)
		}
	}
	return out
}

// buildTable converts a view into the table model.
func (s *Server) buildTable(v core.View) templates.TableData {
	fields := tableColumns(v.Request.Photos)

	cols := make([]templates.Column, len(fields))
	for i, f := range fields {
		col := templates.Column{
			Field:     f,
			Label:     f.Label(),
			Indicator: v.Sort.Indicator(f),
		}
		if next, ok := v.Request.Toggle(f); ok {
			col.SortURL = s.viewURL("/", next)
			col.TableURL = s.viewURL("/table", next)
		}
		cols[i] = col
	}

	rows := make([][]templates.Cell, len(v.Rows))
	for i, row := range v.Rows {
		cells := make([]templates.Cell, len(fields))
		for j, f := range fields {
			if f == catalog.FieldPhoto {
				cells[j].PhotoURL = s.photoURL(v.Value(row, catalog.FieldIdentifier))
				continue
			}
			cells[j].Text = v.Value(row, f)
		}
		rows[i] = cells
	}

	return templates.TableData{
		Columns: cols,
		Rows:    rows,
		Shown:   len(v.Rows),
		Total:   v.Total,
	}
}

// statusTable is shown while no dataset is published. A failed reload
// without prior data shows the failure text.
func (s *Server) statusTable() templates.TableData {
	if s.service.LastError() != "" {
		return templates.TableData{Status: templates.StatusFailed, Failure: true}
	}
	return templates.TableData{Status: templates.StatusLoading}
}
