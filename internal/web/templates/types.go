// Package templates renders the HTML views of the collection viewer. The
// components are written in templ; run `templ generate` after editing a
// .templ file.
package templates

//go:generate templ generate

import (
	"time"

	"github.com/JonMunkholm/mineraly/internal/catalog"
)

// Status texts shown in place of the table.
const (
	StatusLoading = "Načítání dat…"
	StatusFailed  = "Chyba načítání dat."
	StatusEmpty   = "Žádný minerál neodpovídá filtru."
)

// ReloadedEvent is the htmx event that makes the table refresh itself after
// the collection was replaced.
const ReloadedEvent = "collection-reloaded"

// Column is one table header.
type Column struct {
	Field     catalog.Field
	Label     string
	SortURL   string // page link, empty when the column cannot be sorted
	TableURL  string // partial fetched by htmx for the same view
	Indicator string // ▲, ▼ or empty
}

// Cell is one table cell. PhotoURL is set only in the photo column.
type Cell struct {
	Text     string
	PhotoURL string
}

// TableData is the model of the collection table.
type TableData struct {
	Columns []Column
	Rows    [][]Cell
	Shown   int
	Total   int

	// Status replaces the table when set.
	Status  string
	Failure bool
}

// PageData is the model of the collection page.
type PageData struct {
	Title   string
	Query   string
	Region  string
	Regions []string
	Photos  bool
	Table   TableData

	UploadEnabled bool
	Source        string
	LoadedAt      time.Time
}

// SourceLine describes where the shown data came from.
func (d PageData) SourceLine() string {
	if d.LoadedAt.IsZero() {
		return d.Source
	}
	return d.Source + " · " + d.LoadedAt.Format("2. 1. 2006 15:04")
}
