package tui

import "github.com/JonMunkholm/mineraly/internal/catalog"

const (
	statusLoading   = "Načítání dat…"
	statusFailed    = "Chyba načítání dat."
	statusMalformed = "Soubor neobsahuje hlavičku a data, zobrazena předchozí data."
)

const pickKeys = "abcdefghijklm"

// sortable lists the sortable columns in display order.
func sortable() []catalog.Field {
	var out []catalog.Field
	for _, f := range catalog.Columns() {
		if f.Sortable() {
			out = append(out, f)
		}
	}
	return out
}

// digitField maps 1..9 and 0 to the first ten sortable columns.
func digitField(key string) (catalog.Field, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0]-'0') - 1
	if idx < 0 {
		idx = 9
	}
	cols := sortable()
	if idx >= len(cols) {
		return 0, false
	}
	return cols[idx], true
}

// pickField maps the letter shown after "s" to a sortable column.
func pickField(key string) (catalog.Field, bool) {
	if len(key) != 1 {
		return 0, false
	}
	for i, f := range sortable() {
		if i < len(pickKeys) && pickKeys[i] == key[0] {
			return f, true
		}
	}
	return 0, false
}
