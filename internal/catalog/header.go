package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unmapped marks a field with no matching header column.
const Unmapped = -1

// ColumnMap binds each mappable field to a zero-based column position,
// or Unmapped. Two fields may share a column when one header satisfies both
// keyword sets.
type ColumnMap [mappedFields]int

// Index returns the column bound to f, or Unmapped.
func (m ColumnMap) Index(f Field) int {
	if !f.Mappable() {
		return Unmapped
	}
	return m[f]
}

// Mapped reports whether f is bound to a column.
func (m ColumnMap) Mapped(f Field) bool {
	return m.Index(f) != Unmapped
}

// NormalizeHeader lowercases s, strips diacritics and drops every character
// outside [a-z0-9]. "Inventární číslo" becomes "inventarnicislo".
func NormalizeHeader(s string) string {
	// transform.Chain keeps state; build one per call so this stays safe for
	// concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapHeaders binds every field to the first header (left to right) whose
// normalized text contains one of the field's keywords.
func MapHeaders(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	var m ColumnMap
	for _, f := range Fields() {
		m[f] = Unmapped
		for i, h := range normalized {
			if containsAny(h, Keywords(f)) {
				m[f] = i
				break
			}
		}
	}
	return m
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
