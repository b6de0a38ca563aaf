package catalog

import "strings"

// Criteria selects rows for a view. Zero value selects everything.
type Criteria struct {
	// Region must equal the row's region value exactly. Empty means any.
	Region string
	// Query is matched case-insensitively against all raw cells of the row
	// joined by a space. Empty means any.
	Query string
}

// IsZero reports whether c selects every row.
func (c Criteria) IsZero() bool {
	return c.Region == "" && c.Query == ""
}

// matcher holds the lowered query so it is computed once per filter run.
type matcher struct {
	data   *Dataset
	region string
	query  string
}

func (c Criteria) matcher(d *Dataset) matcher {
	return matcher{data: d, region: c.Region, query: strings.ToLower(c.Query)}
}

func (m matcher) match(row Row) bool {
	if m.region != "" && m.data.Value(row, FieldRegion) != m.region {
		return false
	}
	if m.query != "" && !strings.Contains(strings.ToLower(strings.Join(row, " ")), m.query) {
		return false
	}
	return true
}

// Match reports whether row satisfies c.
func (c Criteria) Match(d *Dataset, row Row) bool {
	return c.matcher(d).match(row)
}

// Filter returns a new slice with the rows of the full row set that satisfy
// c, in source order. The dataset is not modified.
func Filter(d *Dataset, c Criteria) []Row {
	rows := d.Rows()
	out := make([]Row, 0, len(rows))
	m := c.matcher(d)
	for _, row := range rows {
		if m.match(row) {
			out = append(out, row)
		}
	}
	return out
}
