package core

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JonMunkholm/mineraly/internal/catalog"
)

// ViewRequest describes one view of the collection. It round-trips through
// URL query parameters, so a view is shareable as a link.
type ViewRequest struct {
	Query  string `schema:"q" json:"q,omitempty"`
	Region string `schema:"region" json:"region,omitempty"`
	Sort   string `schema:"sort" json:"sort,omitempty"`
	Dir    string `schema:"dir" json:"dir,omitempty"`
	Photos bool   `schema:"photos" json:"photos,omitempty"`
}

// Criteria returns the filter part of r.
func (r ViewRequest) Criteria() catalog.Criteria {
	return catalog.Criteria{Region: r.Region, Query: r.Query}
}

// SortState returns the sort part of r. Unknown or non-sortable fields give
// an inactive state.
func (r ViewRequest) SortState() catalog.SortState {
	f, ok := catalog.ParseField(r.Sort)
	if !ok || !f.Sortable() {
		return catalog.SortState{}
	}
	return catalog.SortState{Field: f, Direction: catalog.ParseDirection(r.Dir), Active: true}
}

// WithSort returns r ordered by s.
func (r ViewRequest) WithSort(s catalog.SortState) ViewRequest {
	if !s.Active {
		r.Sort, r.Dir = "", ""
		return r
	}
	r.Sort = s.Field.String()
	r.Dir = s.Direction.String()
	return r
}

// Toggle returns r after the user picks column f. It returns r and false
// when f cannot be sorted.
func (r ViewRequest) Toggle(f catalog.Field) (ViewRequest, bool) {
	next, ok := r.SortState().Next(f)
	if !ok {
		return r, false
	}
	return r.WithSort(next), true
}

// Values encodes r as URL query values, omitting empty parameters.
func (r ViewRequest) Values() url.Values {
	v := make(url.Values, 5)
	if r.Query != "" {
		v["q"] = []string{r.Query}
	}
	if r.Region != "" {
		v["region"] = []string{r.Region}
	}
	if s := r.SortState(); s.Active {
		v["sort"] = []string{s.Field.String()}
		v["dir"] = []string{s.Direction.String()}
	}
	if r.Photos {
		v["photos"] = []string{strconv.FormatBool(true)}
	}
	return v
}

// Encode returns r as a query string without the leading "?".
func (r ViewRequest) Encode() string {
	return r.Values().Encode()
}

// View is the result of a query.
type View struct {
	Request  ViewRequest
	Dataset  *catalog.Dataset
	Rows     []catalog.Row
	Sort     catalog.SortState
	Criteria catalog.Criteria
	Total    int
	Regions  []string
	LoadedAt time.Time
	Source   string
}

// Value is shorthand for the dataset accessor.
func (v View) Value(row catalog.Row, f catalog.Field) string {
	return v.Dataset.Value(row, f)
}

// Query derives the view described by req from the published dataset. The
// view and the dataset it reads always come from the same load.
func (s *Service) Query(req ViewRequest) (View, error) {
	snap := s.current()
	if snap == nil {
		return View{}, ErrNoData
	}

	criteria := req.Criteria()
	sort := req.SortState()
	p := snap.base.WithCriteria(criteria).WithSort(sort)

	queriesTotal.WithLabelValues(
		strconv.FormatBool(!criteria.IsZero()),
		strconv.FormatBool(sort.Active),
	).Inc()

	return View{
		Request:  req.WithSort(p.Sort()),
		Dataset:  p.Dataset(),
		Rows:     p.View(),
		Sort:     p.Sort(),
		Criteria: p.Criteria(),
		Total:    p.Dataset().Len(),
		Regions:  snap.regions,
		LoadedAt: snap.loadedAt,
		Source:   snap.source,
	}, nil
}
