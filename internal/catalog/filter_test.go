package catalog

import "testing"

const filterCSV = "ID;Nazev;Lokalita;Region\n" +
	"1;Křemen;Jeseníky;Morava\n" +
	"2;Kalcit;Krkonoše;Čechy\n" +
	"3;Záhněda;Sázava;Čechy\n" +
	"4;Ametyst;Jeseníky;\n"

func names(d *Dataset, rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = d.Value(r, FieldName)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	d, ok := Parse(filterCSV)
	if !ok {
		t.Fatal("Parse returned false")
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"zero criteria", Criteria{}, []string{"Křemen", "Kalcit", "Záhněda", "Ametyst"}},
		{"region exact", Criteria{Region: "Čechy"}, []string{"Kalcit", "Záhněda"}},
		{"region is not a prefix match", Criteria{Region: "Čech"}, []string{}},
		{"region case matters", Criteria{Region: "morava"}, []string{}},
		{"query case insensitive", Criteria{Query: "JESENÍKY"}, []string{"Křemen", "Ametyst"}},
		{"query diacritics matter", Criteria{Query: "jeseniky"}, []string{}},
		{"query matches any cell", Criteria{Query: "3"}, []string{"Záhněda"}},
		{"query spans cells", Criteria{Query: "kalcit krk"}, []string{"Kalcit"}},
		{"region and query", Criteria{Region: "Čechy", Query: "sáz"}, []string{"Záhněda"}},
		{"no match", Criteria{Query: "pyrit"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(d, Filter(d, tt.criteria))
			if !equalStrings(got, tt.want) {
				t.Errorf("Filter(%+v) = %v, want %v", tt.criteria, got, tt.want)
			}
		})
	}
}

func TestFilter_DoesNotAliasRows(t *testing.T) {
	d, _ := Parse(filterCSV)
	view := Filter(d, Criteria{})
	view[0], view[1] = view[1], view[0]

	if got := d.Value(d.Rows()[0], FieldName); got != "Křemen" {
		t.Errorf("full row set reordered through the view: first row is %q", got)
	}
}

func TestFilter_Subset(t *testing.T) {
	d, _ := Parse(filterCSV)
	for _, c := range []Criteria{{}, {Region: "Čechy"}, {Query: "e"}, {Region: "x", Query: "y"}} {
		view := Filter(d, c)
		if len(view) > d.Len() {
			t.Errorf("Filter(%+v) returned %d rows from %d", c, len(view), d.Len())
		}
		for _, r := range view {
			if !c.Match(d, r) {
				t.Errorf("Filter(%+v) kept a non-matching row %v", c, r)
			}
		}
	}
}

func TestCriteriaIsZero(t *testing.T) {
	if !(Criteria{}).IsZero() {
		t.Error("empty criteria should be zero")
	}
	if (Criteria{Query: "a"}).IsZero() {
		t.Error("criteria with query should not be zero")
	}
}
