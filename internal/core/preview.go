package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/source"
)

// Sample limits
const (
	maxPreviewRows      = 5
	maxDuplicateSamples = 10
	maxShortRowSamples  = 10
)

// ColumnPreview is the binding of one field in an analyzed file.
type ColumnPreview struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Index  int    `json:"index"`
	Header string `json:"header,omitempty"`
}

// DuplicatePreview is an inventory number used by more than one row.
type DuplicatePreview struct {
	Identifier string `json:"identifier"`
	Lines      []int  `json:"lines"`
}

// Preview is a read-only analysis of a file: how it would be read if it
// were uploaded.
type Preview struct {
	Source    string              `json:"source"`
	Delimiter string              `json:"delimiter"`
	Rows      int                 `json:"rows"`
	Columns   []ColumnPreview     `json:"columns"`
	Unmapped  []string            `json:"unmappedHeaders"`
	Regions   []string            `json:"regions"`
	Sample    []map[string]string `json:"sample"`

	// Duplicates lists repeated inventory numbers with 1-based file lines.
	Duplicates []DuplicatePreview `json:"duplicates,omitempty"`
	// ShortRows lists file lines with fewer cells than the header.
	ShortRows  []int              `json:"shortRows,omitempty"`

	Duration time.Duration `json:"duration"`
}

// AnalyzeUpload decodes and parses data the way Upload does, without
// publishing anything. A file with fewer than two lines fails with
// ErrMalformed.
func (s *Service) AnalyzeUpload(ctx context.Context, name string, data []byte) (Preview, error) {
	start := time.Now()
	if len(data) == 0 {
		return Preview{}, ErrEmptyFile
	}

	src := &source.StaticSource{Label: name, Data: data, Options: s.upload}
	text, err := src.Fetch(ctx)
	if err != nil {
		return Preview{}, err
	}
	d, ok := catalog.Parse(text)
	if !ok {
		return Preview{}, ErrMalformed
	}

	p := Preview{
		Source:    name,
		Delimiter: d.Delimiter(),
		Rows:      d.Len(),
		Regions:   d.Regions(),
	}

	bound := make(map[int]bool)
	for _, f := range catalog.Fields() {
		idx := d.Columns().Index(f)
		if idx != catalog.Unmapped {
			bound[idx] = true
		}
		p.Columns = append(p.Columns, ColumnPreview{
			Field:  f.String(),
			Label:  f.Label(),
			Index:  idx,
			Header: d.Header(f),
		})
	}
	for i, h := range d.Headers() {
		if !bound[i] {
			p.Unmapped = append(p.Unmapped, h)
		}
	}

	// Blank lines are dropped by the parser, so lines are counted over rows:
	// line 1 is the header.
	seen := make(map[string][]int)
	var order []string
	for i, row := range d.Rows() {
		line := i + 2
		if i < maxPreviewRows {
			p.Sample = append(p.Sample, d.Record(row))
		}
		if len(row) < len(d.Headers()) && len(p.ShortRows) < maxShortRowSamples {
			p.ShortRows = append(p.ShortRows, line)
		}
		id := d.Value(row, catalog.FieldIdentifier)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			order = append(order, id)
		}
		seen[id] = append(seen[id], line)
	}
	for _, id := range order {
		if len(seen[id]) > 1 && len(p.Duplicates) < maxDuplicateSamples {
			p.Duplicates = append(p.Duplicates, DuplicatePreview{Identifier: id, Lines: seen[id]})
		}
	}

	p.Duration = time.Since(start)
	return p, nil
}
