package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/mineraly/internal/catalog"
)

const collection = "Inventarni cislo;Nazev;Lokalita;Region;Rok\n" +
	"1;Křemen;Jeseníky;Morava;2001\n" +
	"2;Kalcit;Krkonoše;Čechy;1999\n" +
	"10;Ametyst;Kozákov;Čechy;2010\n"

func writeCollection(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sbirka.csv")
	if err := os.WriteFile(path, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuery_Table(t *testing.T) {
	out, err := run(t, "query", writeCollection(t), "--region", "Čechy", "--sort", "inv", "--dir", "desc")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	ametyst, kalcit := strings.Index(out, "Ametyst"), strings.Index(out, "Kalcit")
	if ametyst < 0 || kalcit < 0 || ametyst > kalcit {
		t.Errorf("expected Ametyst before Kalcit:\n%s", out)
	}
	if strings.Contains(out, "Křemen") {
		t.Errorf("region filter ignored:\n%s", out)
	}
	for _, want := range []string{"Inv. č. ▼", "Zobrazeno 2 z 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuery_JSON(t *testing.T) {
	out, err := run(t, "query", writeCollection(t), "-q", "KŘEM", "-f", "json")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var res QueryResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.Count != 1 || res.Total != 3 || res.Rows[0]["name"] != "Křemen" {
		t.Errorf("result = %+v", res)
	}
}

func TestQuery_CSV(t *testing.T) {
	out, err := run(t, "query", writeCollection(t), "--sort", "name", "-f", "csv")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	d, ok := catalog.Parse(out)
	if !ok || d.Len() != 3 {
		t.Fatalf("exported csv not readable:\n%s", out)
	}
	if got := d.Value(d.Rows()[0], catalog.FieldName); got != "Ametyst" {
		t.Errorf("first row = %q, want Ametyst", got)
	}
}

func TestQuery_Photos(t *testing.T) {
	out, err := run(t, "query", writeCollection(t), "--photos", "--photos-dir", "fotky")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, filepath.Join("fotky", "10.jpg")) {
		t.Errorf("photo path missing:\n%s", out)
	}
}

func TestQuery_Errors(t *testing.T) {
	path := writeCollection(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unsortable field", []string{"query", path, "--sort", "foto"}, "cannot sort"},
		{"unknown format", []string{"query", path, "-f", "xml"}, "unknown format"},
		{"missing file", []string{"query", filepath.Join(t.TempDir(), "nope.csv")}, "nope.csv"},
		{"bad charset", []string{"query", path, "--charset", "klingon"}, "klingon"},
		{"no argument", []string{"query"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestQuery_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prazdny.csv")
	os.WriteFile(path, []byte("Nazev;Region\n"), 0o644)
	if _, err := run(t, "query", path); err == nil || !strings.Contains(err.Error(), "no header and data rows") {
		t.Errorf("err = %v", err)
	}
}

func TestInspect(t *testing.T) {
	path := writeCollection(t)

	out, err := run(t, "inspect", path, "--format", "json")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var info Inspection
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Rows != 3 || info.Delimiter != ";" {
		t.Errorf("info = %+v", info)
	}
	if strings.Join(info.Regions, ",") != "Čechy,Morava" {
		t.Errorf("regions = %v", info.Regions)
	}
	byField := map[string]ColumnInfo{}
	for _, c := range info.Columns {
		byField[c.Field] = c
	}
	if c := byField["name"]; c.Index != 1 || c.Header != "Nazev" {
		t.Errorf("name column = %+v", c)
	}
	if c := byField["desc"]; c.Index != catalog.Unmapped {
		t.Errorf("desc column = %+v", c)
	}

	out, err = run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Záznamů:    3", "Hlavička", "Inventarni cislo"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}
