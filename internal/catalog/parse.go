package catalog

import (
	"strings"
	"unicode"
)

const bom = "\ufeff"

// trim removes surrounding white space including any byte order marks.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\ufeff' || unicode.IsSpace(r)
	})
}

// Row is one data line split on the delimiter. Cells are raw: no trimming,
// no unquoting. Rows are never modified after parsing.
type Row []string

// Dataset is the result of one load: the header, its column bindings and
// the data rows in source order.
type Dataset struct {
	headers   []string
	columns   ColumnMap
	rows      []Row
	delimiter string
}

// DetectDelimiter returns ";" when the header line contains a semicolon and
// "," otherwise.
func DetectDelimiter(headerLine string) string {
	if strings.Contains(headerLine, ";") {
		return ";"
	}
	return ","
}

// Parse splits text into a header and rows. It returns false when the text
// has fewer than two lines; nothing is produced in that case.
//
// Quoted fields are not special: a delimiter inside quotes still splits.
func Parse(text string) (*Dataset, bool) {
	lines := splitLines(trim(text))
	if len(lines) < 2 {
		return nil, false
	}

	delim := DetectDelimiter(lines[0])
	headers := strings.Split(lines[0], delim)

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if trim(line) == "" {
			continue
		}
		rows = append(rows, Row(strings.Split(line, delim)))
	}

	return &Dataset{
		headers:   headers,
		columns:   MapHeaders(headers),
		rows:      rows,
		delimiter: delim,
	}, true
}

// splitLines splits on "\n" and "\r\n". A lone "\r" is not a line break.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
