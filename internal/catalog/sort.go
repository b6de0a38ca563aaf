package catalog

import (
	"slices"
	"strings"
)

// Direction of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Arrow returns the header indicator for d.
func (d Direction) Arrow() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}

// ParseDirection reads "asc" or "desc"; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

// SortState is the active sort of a view. The zero value has no active key.
type SortState struct {
	Field     Field
	Direction Direction
	Active    bool
}

// Next returns the state after the user picks f: the direction flips when f
// is already active, otherwise f becomes active ascending. It returns s and
// false when f cannot be sorted.
func (s SortState) Next(f Field) (SortState, bool) {
	if !f.Sortable() {
		return s, false
	}
	if s.Active && s.Field == f {
		return SortState{Field: f, Direction: s.Direction.Flip(), Active: true}, true
	}
	return SortState{Field: f, Direction: Ascending, Active: true}, true
}

// Indicator returns the arrow to show next to the column of f, or "".
func (s SortState) Indicator(f Field) string {
	if !s.Active || s.Field != f {
		return ""
	}
	return s.Direction.Arrow()
}

// SortRows orders rows in place by the field and direction of s. Rows that
// compare equal keep their relative order. Inactive or non-sortable states
// leave rows untouched.
func SortRows(d *Dataset, rows []Row, s SortState) {
	if !s.Active || !s.Field.Sortable() {
		return
	}
	c := NewComparator()
	slices.SortStableFunc(rows, func(a, b Row) int {
		return c.CompareDir(d.Value(a, s.Field), d.Value(b, s.Field), s.Direction)
	})
}
