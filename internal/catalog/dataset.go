package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Locale is the collation locale for every string ordering in the package.
var Locale = language.Czech

// newCollator returns a Czech collator. Collators keep scratch buffers and
// must not be shared between goroutines.
func newCollator() *collate.Collator {
	return collate.New(Locale)
}

// Headers returns the raw header cells.
func (d *Dataset) Headers() []string {
	if d == nil {
		return nil
	}
	return d.headers
}

// Columns returns the header-to-column bindings.
func (d *Dataset) Columns() ColumnMap {
	if d == nil {
		var m ColumnMap
		for i := range m {
			m[i] = Unmapped
		}
		return m
	}
	return d.columns
}

// Rows returns the full row set in source order. Callers must not modify it.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	return d.rows
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Delimiter returns the delimiter detected from the header line.
func (d *Dataset) Delimiter() string {
	if d == nil {
		return ""
	}
	return d.delimiter
}

// Header returns the raw header text bound to f, or "" when f is unmapped.
func (d *Dataset) Header(f Field) string {
	idx := d.Columns().Index(f)
	if idx == Unmapped || idx >= len(d.headers) {
		return ""
	}
	return trim(d.headers[idx])
}

// Value returns the cell of row bound to f, trimmed and with one layer of
// surrounding double quotes removed. Unmapped fields and missing cells read
// as "".
func (d *Dataset) Value(row Row, f Field) string {
	idx := d.Columns().Index(f)
	if idx == Unmapped || idx >= len(row) || row[idx] == "" {
		return ""
	}
	v := trim(row[idx])
	v = strings.TrimPrefix(v, `"`)
	v = strings.TrimSuffix(v, `"`)
	return v
}

// Record returns all mapped values of row keyed by field wire name.
func (d *Dataset) Record(row Row) map[string]string {
	out := make(map[string]string, mappedFields)
	for _, f := range Fields() {
		out[f.String()] = d.Value(row, f)
	}
	return out
}

// Regions returns the distinct non-empty region values of the full row set
// in Czech collation order.
func (d *Dataset) Regions() []string {
	seen := make(map[string]struct{})
	var regions []string
	for _, row := range d.Rows() {
		r := d.Value(row, FieldRegion)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		regions = append(regions, r)
	}

	col := newCollator()
	slices.SortStableFunc(regions, col.CompareString)
	return regions
}
