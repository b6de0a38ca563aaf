package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/logging"
)

// MineralsResponse is the JSON form of a view.
type MineralsResponse struct {
	Rows     []map[string]string `json:"rows"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
	Query    string              `json:"q,omitempty"`
	Region   string              `json:"region,omitempty"`
	Sort     *SortResponse       `json:"sort,omitempty"`
	Source   string              `json:"source"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// SortResponse is the active sort of a view.
type SortResponse struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

// ColumnResponse describes how one field is bound to the loaded file.
type ColumnResponse struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Index    int    `json:"index"`
	Header   string `json:"header,omitempty"`
	Sortable bool   `json:"sortable"`
}

// query decodes the view request and runs it, answering errors itself.
func (s *Server) query(w http.ResponseWriter, r *http.Request) (core.View, bool) {
	req, err := s.parseViewRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return core.View{}, false
	}
	view, err := s.service.Query(req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return core.View{}, false
	}
	return view, true
}

// handleMinerals returns the rows of a view keyed by field name.
func (s *Server) handleMinerals(w http.ResponseWriter, r *http.Request) {
	view, ok := s.query(w, r)
	if !ok {
		return
	}

	rows := make([]map[string]string, len(view.Rows))
	for i, row := range view.Rows {
		rec := view.Dataset.Record(row)
		if view.Request.Photos {
			rec[catalog.FieldPhoto.String()] = s.photoURL(rec[catalog.FieldIdentifier.String()])
		}
		rows[i] = rec
	}

	resp := MineralsResponse{
		Rows:     rows,
		Count:    len(rows),
		Total:    view.Total,
		Query:    view.Criteria.Query,
		Region:   view.Criteria.Region,
		Source:   view.Source,
		LoadedAt: view.LoadedAt,
	}
	if view.Sort.Active {
		resp.Sort = &SortResponse{Field: view.Sort.Field.String(), Dir: view.Sort.Direction.String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRegions returns the region choices in Czech order.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.service.Regions()
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if regions == nil {
		regions = []string{}
	}
	writeJSON(w, http.StatusOK, regions)
}

// handleColumns returns the header mapping of the loaded file.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Dataset()
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	cols := d.Columns()
	resp := make([]ColumnResponse, 0, len(catalog.Fields()))
	for _, f := range catalog.Fields() {
		resp = append(resp, ColumnResponse{
			Field:    f.String(),
			Label:    f.Label(),
			Index:    cols.Index(f),
			Header:   d.Header(f),
			Sortable: f.Sortable(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExport writes the current view as a semicolon separated CSV file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.query(w, r)
	if !ok {
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="mineraly_%s.csv"`, timestamp))

	if err := catalog.WriteCSV(w, view.Dataset, view.Rows); err != nil {
		logging.FromContext(r.Context()).Error("export failed", "error", err)
	}
}
