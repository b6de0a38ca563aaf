package catalog

import (
	"cmp"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
)

// maxNumericLen is the length (in characters) from which numeric-looking
// values are compared as text. Inventory numbers and dates such as
// "12345678901" or "12.05.2019" stay in collation order.
const maxNumericLen = 10

// numericPrefix matches the leading number of a value, the way a lenient
// float parse reads "12 cm" as 12.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// CompareKind tells how a pair of values is ordered.
type CompareKind int

const (
	// CompareCollated orders by Czech collation.
	CompareCollated CompareKind = iota
	// CompareNumeric orders by the parsed numbers.
	CompareNumeric
)

func (k CompareKind) String() string {
	if k == CompareNumeric {
		return "numeric"
	}
	return "collated"
}

// Comparison is the classification of one value pair. A and B are only
// meaningful when Kind is CompareNumeric.
type Comparison struct {
	Kind CompareKind
	A, B float64
}

// ParseNumber reads the leading number of s after replacing the first comma
// with a period. "3,5" is 3.5, "12 cm" is 12, "cca 5" is not a number.
func ParseNumber(s string) (float64, bool) {
	s = trim(strings.Replace(s, ",", ".", 1))
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// Classify decides how a and b compare: numerically when both parse as
// numbers and both are shorter than ten characters, by collation otherwise.
func Classify(a, b string) Comparison {
	if utf8.RuneCountInString(a) >= maxNumericLen || utf8.RuneCountInString(b) >= maxNumericLen {
		return Comparison{Kind: CompareCollated}
	}
	na, okA := ParseNumber(a)
	nb, okB := ParseNumber(b)
	if !okA || !okB {
		return Comparison{Kind: CompareCollated}
	}
	return Comparison{Kind: CompareNumeric, A: na, B: nb}
}

// Comparator orders cell values. It is not safe for concurrent use.
type Comparator struct {
	col *collate.Collator
}

// NewComparator returns a Comparator using Czech collation.
func NewComparator() *Comparator {
	return &Comparator{col: newCollator()}
}

// Compare returns the ascending order of a and b.
func (c *Comparator) Compare(a, b string) int {
	cmpr := Classify(a, b)
	if cmpr.Kind == CompareNumeric {
		return cmp.Compare(cmpr.A, cmpr.B)
	}
	return c.col.CompareString(a, b)
}

// CompareDir applies dir to Compare.
func (c *Comparator) CompareDir(a, b string, dir Direction) int {
	n := c.Compare(a, b)
	if dir == Descending {
		return -n
	}
	return n
}
