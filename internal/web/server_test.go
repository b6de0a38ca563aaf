package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/config"
	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/source"
)

const collection = "Inventarni cislo;Nazev;Lokalita;Region;Rok\n" +
	"1;Křemen;Jeseníky;Morava;2001\n" +
	"2;Kalcit;Krkonoše;Čechy;1999\n" +
	"10;Ametyst;Kozákov;Čechy;2010\n"

// newTestServer builds a server over src with default settings plus env.
func newTestServer(t *testing.T, src source.Source, env map[string]string) *Server {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	if _, ok := env["RATE_LIMIT_ENABLED"]; !ok {
		env["RATE_LIMIT_ENABLED"] = "false"
	}
	cfg, err := config.LoadFrom(config.MapLookup(env))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	srv := NewServer(core.NewService(src, core.Config{}), cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

// loadedServer is a server with the test collection already published.
func loadedServer(t *testing.T, env map[string]string) *Server {
	t.Helper()
	srv := newTestServer(t, &source.StaticSource{Label: "test.csv", Data: []byte(collection)}, env)
	if _, err := srv.service.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func rowNames(resp MineralsResponse) []string {
	out := make([]string, len(resp.Rows))
	for i, r := range resp.Rows {
		out[i] = r["name"]
	}
	return out
}

func TestIndex_BeforeLoad(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Načítání dat…") {
		t.Errorf("loading status missing: %s", body)
	}
	if !strings.Contains(body, "Sbírka minerálů") {
		t.Error("title missing")
	}
}

func TestTable_AfterFailedLoad(t *testing.T) {
	srv := newTestServer(t, &source.FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}, nil)
	if _, err := srv.service.Reload(context.Background()); err == nil {
		t.Fatal("Reload of missing file succeeded")
	}

	rec := get(t, srv, "/table")
	if !strings.Contains(rec.Body.String(), "Chyba načítání dat.") {
		t.Errorf("failure status missing: %s", rec.Body.String())
	}
}

func TestTable_HeaderOnlyStaysLoading(t *testing.T) {
	srv := newTestServer(t, &source.StaticSource{Label: "test.csv", Data: []byte("Inventarni;Nazev\n")}, nil)
	res, err := srv.service.Reload(context.Background())
	if err != nil || res.Applied {
		t.Fatalf("Reload = %+v, %v", res, err)
	}

	body := get(t, srv, "/table").Body.String()
	if !strings.Contains(body, "Načítání dat…") {
		t.Errorf("loading status missing: %s", body)
	}
	if strings.Contains(body, "Chyba načítání dat.") {
		t.Errorf("header-only input shown as failure: %s", body)
	}
}

func TestIndex_RendersCollection(t *testing.T) {
	srv := loadedServer(t, nil)

	body := get(t, srv, "/").Body.String()
	for _, want := range []string{
		"<b>Křemen</b>",
		`<option value="Čechy">Čechy</option>`,
		`href="/?dir=asc&amp;sort=name"`,
		"Zobrazeno 3 z 3",
		"test.csv",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `data-field="foto"`) {
		t.Error("photo column shown without photos=true")
	}
}

func TestIndex_SortLinkToggles(t *testing.T) {
	srv := loadedServer(t, nil)

	body := get(t, srv, "/?sort=name&q=e").Body.String()
	if !strings.Contains(body, `href="/?dir=desc&amp;q=e&amp;sort=name"`) {
		t.Errorf("active column should link to descending order: %s", body)
	}
	if !strings.Contains(body, "▲") {
		t.Error("ascending indicator missing")
	}
	if !strings.Contains(body, `href="/?dir=asc&amp;q=e&amp;sort=region"`) {
		t.Error("other column should start ascending and keep the query")
	}
	if !strings.Contains(body, `value="e"`) {
		t.Error("search box should keep the query")
	}
	if !strings.Contains(body, `hx-get="/table?dir=desc&amp;q=e&amp;sort=name"`) {
		t.Error("sort link should refresh the table in place")
	}
}

func TestTable_HTMXPushesPageURL(t *testing.T) {
	srv := loadedServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/table?q=e&sort=name", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(t, srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Push-Url"); got != "/?dir=asc&q=e&sort=name" {
		t.Errorf("HX-Push-Url = %q", got)
	}
	if got := get(t, srv, "/table?q=e").Header().Get("HX-Push-Url"); got != "" {
		t.Errorf("plain request pushed %q", got)
	}
}

func TestTable_FilterAndSort(t *testing.T) {
	srv := loadedServer(t, nil)

	q := url.Values{"region": {"Čechy"}, "sort": {"name"}, "dir": {"desc"}}
	body := get(t, srv, "/table?"+q.Encode()).Body.String()

	kalcit := strings.Index(body, "Kalcit")
	ametyst := strings.Index(body, "Ametyst")
	if kalcit < 0 || ametyst < 0 || kalcit > ametyst {
		t.Errorf("want Kalcit before Ametyst: %s", body)
	}
	if strings.Contains(body, "Křemen") {
		t.Error("region filter not applied")
	}
	if strings.Contains(body, "<html") {
		t.Error("partial rendered the full page")
	}
}

func TestMinerals(t *testing.T) {
	srv := loadedServer(t, nil)

	tests := []struct {
		name  string
		query url.Values
		want  []string
		sort  *SortResponse
	}{
		{"source order", nil, []string{"Křemen", "Kalcit", "Ametyst"}, nil},
		{"numeric identifier", url.Values{"sort": {"inv"}, "dir": {"desc"}}, []string{"Ametyst", "Kalcit", "Křemen"}, &SortResponse{"inv", "desc"}},
		{"year", url.Values{"sort": {"year"}}, []string{"Kalcit", "Křemen", "Ametyst"}, &SortResponse{"year", "asc"}},
		{"query", url.Values{"q": {"krkonoše"}}, []string{"Kalcit"}, nil},
		{"photo sort ignored", url.Values{"sort": {"foto"}}, []string{"Křemen", "Kalcit", "Ametyst"}, nil},
		{"unknown keys ignored", url.Values{"page": {"2"}}, []string{"Křemen", "Kalcit", "Ametyst"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/api/minerals?"+tt.query.Encode())
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			resp := decodeJSON[MineralsResponse](t, rec)
			if got := rowNames(resp); !slices.Equal(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
			if resp.Total != 3 || resp.Count != len(tt.want) {
				t.Errorf("count = %d, total = %d", resp.Count, resp.Total)
			}
			if (resp.Sort == nil) != (tt.sort == nil) || (resp.Sort != nil && *resp.Sort != *tt.sort) {
				t.Errorf("sort = %+v, want %+v", resp.Sort, tt.sort)
			}
		})
	}
}

func TestMinerals_Errors(t *testing.T) {
	tests := []struct {
		name     string
		srv      func(t *testing.T) *Server
		target   string
		wantCode int
		wantErr  string
	}{
		{"before load", func(t *testing.T) *Server { return newTestServer(t, nil, nil) }, "/api/minerals", http.StatusServiceUnavailable, "DATA001"},
		{"invalid bool", func(t *testing.T) *Server { return loadedServer(t, nil) }, "/api/minerals?photos=maybe", http.StatusBadRequest, "REQ001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, tt.srv(t), tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if resp := decodeJSON[ErrorResponse](t, rec); resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
		})
	}
}

func TestTable_HTMXError(t *testing.T) {
	srv := loadedServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/table?photos=maybe", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(t, srv, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `class="alert alert-error"`) || !strings.Contains(body, "REQ001") {
		t.Errorf("body = %s", body)
	}
}

func TestRegionsAndColumns(t *testing.T) {
	srv := loadedServer(t, nil)

	regions := decodeJSON[[]string](t, get(t, srv, "/api/regions"))
	if !slices.Equal(regions, []string{"Čechy", "Morava"}) {
		t.Errorf("regions = %v", regions)
	}

	cols := decodeJSON[[]ColumnResponse](t, get(t, srv, "/api/columns"))
	byField := make(map[string]ColumnResponse, len(cols))
	for _, c := range cols {
		byField[c.Field] = c
	}
	if c := byField["inv"]; c.Index != 0 || c.Header != "Inventarni cislo" {
		t.Errorf("inv column = %+v", c)
	}
	if c := byField["year"]; c.Index != 4 || !c.Sortable {
		t.Errorf("year column = %+v", c)
	}
	if c := byField["desc"]; c.Index != catalog.Unmapped || c.Header != "" {
		t.Errorf("desc column = %+v", c)
	}
}

func TestExport_LoadsBack(t *testing.T) {
	srv := loadedServer(t, nil)

	rec := get(t, srv, "/api/export?sort=name&region=%C4%8Cechy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, `attachment; filename="mineraly_`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	d, ok := catalog.Parse(rec.Body.String())
	if !ok {
		t.Fatalf("export does not parse: %q", rec.Body.String())
	}
	if d.Delimiter() != ";" || d.Len() != 2 {
		t.Fatalf("delimiter %q, %d rows", d.Delimiter(), d.Len())
	}
	first := d.Rows()[0]
	if d.Value(first, catalog.FieldIdentifier) != "10" || d.Value(first, catalog.FieldName) != "Ametyst" {
		t.Errorf("first row = %v", d.Record(first))
	}
	for _, f := range catalog.Fields() {
		if !d.Columns().Mapped(f) {
			t.Errorf("exported header of %s does not map back", f)
		}
	}
}

func TestReload(t *testing.T) {
	srv := loadedServer(t, nil)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	resp := decodeJSON[UploadResponse](t, rec)
	if !resp.Applied || resp.Rows != 3 || resp.Source != "test.csv" {
		t.Errorf("response = %+v", resp)
	}

	history := decodeJSON[[]core.ReloadRecord](t, get(t, srv, "/api/reloads"))
	if len(history) != 2 || history[0].Trigger != core.TriggerAPI || history[0].IPAddress != "192.0.2.1" {
		t.Errorf("history = %+v", history)
	}
}

func TestReload_NoSource(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
	if resp := decodeJSON[ErrorResponse](t, rec); resp.Code != "SRC005" {
		t.Errorf("code = %q", resp.Code)
	}
}

func uploadRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := do(t, srv, uploadRequest(t, "moje.csv", []byte("ID,Nazev,Kraj\n7,Pyrit,Morava\n")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if resp := decodeJSON[UploadResponse](t, rec); resp.Rows != 1 || resp.Source != "moje.csv" {
		t.Errorf("response = %+v", resp)
	}

	minerals := decodeJSON[MineralsResponse](t, get(t, srv, "/api/minerals"))
	if got := rowNames(minerals); !slices.Equal(got, []string{"Pyrit"}) {
		t.Errorf("rows after upload = %v", got)
	}
}

func TestUpload_HTMX(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req := uploadRequest(t, "moje.csv", []byte("ID,Nazev,Kraj\n7,Pyrit,Morava\n"))
	req.Header.Set("HX-Request", "true")
	rec := do(t, srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("HX-Trigger"); got != "collection-reloaded" {
		t.Errorf("HX-Trigger = %q", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Načteno řádků: 1 (moje.csv)") {
		t.Errorf("body = %s", body)
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantCode int
		wantErr  string
	}{
		{"no file", "", nil, http.StatusBadRequest, "FILE004"},
		{"empty file", "a.csv", nil, http.StatusBadRequest, "FILE005"},
		{"header only", "a.csv", []byte("ID;Nazev\n"), http.StatusUnprocessableEntity, "DATA002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := loadedServer(t, nil)
			rec := do(t, srv, uploadRequest(t, tt.file, tt.data))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body)
			}
			if resp := decodeJSON[ErrorResponse](t, rec); resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
			// The published collection survives a rejected upload.
			if n := len(decodeJSON[MineralsResponse](t, get(t, srv, "/api/minerals")).Rows); n != 3 {
				t.Errorf("%d rows after rejected upload", n)
			}
		})
	}
}

func TestUploadPreview(t *testing.T) {
	srv := loadedServer(t, nil)

	req := uploadRequest(t, "nova.csv", []byte("ID;Nazev;Cena\n7;Pyrit;100\n7;Galenit;20\n"))
	req.URL.Path = "/api/upload/preview"
	rec := do(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	p := decodeJSON[core.Preview](t, rec)
	if p.Rows != 2 || !slices.Equal(p.Unmapped, []string{"Cena"}) || len(p.Duplicates) != 1 {
		t.Errorf("preview = %+v", p)
	}

	// Nothing was published.
	if n := len(decodeJSON[MineralsResponse](t, get(t, srv, "/api/minerals")).Rows); n != 3 {
		t.Errorf("%d rows after preview, want 3", n)
	}

	req = uploadRequest(t, "a.csv", []byte("ID;Nazev\n"))
	req.URL.Path = "/api/upload/preview"
	if rec := do(t, srv, req); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("header only: status = %d", rec.Code)
	}
}

func TestUpload_Disabled(t *testing.T) {
	srv := loadedServer(t, map[string]string{"UPLOAD_ENABLED": "false", "SOURCE_PATH": "unused.csv"})

	rec := do(t, srv, uploadRequest(t, "a.csv", []byte(collection)))
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
	if strings.Contains(get(t, srv, "/").Body.String(), `id="upload"`) {
		t.Error("upload form rendered while disabled")
	}
}

func TestAPIKeyProtectsMutations(t *testing.T) {
	srv := loadedServer(t, map[string]string{"REQUIRE_API_KEY": "true", "API_KEYS": "k1,k2"})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusForbidden},
		{"header", "X-API-Key", "k2", http.StatusOK},
		{"bearer", "Authorization", "Bearer k1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if rec := do(t, srv, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if rec := get(t, srv, "/api/minerals"); rec.Code != http.StatusOK {
		t.Errorf("reads should stay open, status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &source.StaticSource{Label: "test.csv", Data: []byte(collection)}, nil)

	if rec := get(t, srv, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before load = %d", rec.Code)
	}
	if _, err := srv.service.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status after load = %d", rec.Code)
	}
	if st := decodeJSON[core.Status](t, rec); !st.Loaded || st.Rows != 3 || st.Delimiter != ";" {
		t.Errorf("status = %+v", st)
	}
}

func TestRateLimit(t *testing.T) {
	srv := loadedServer(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "2",
	})

	for i := range 2 {
		if rec := get(t, srv, "/api/regions"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := get(t, srv, "/api/regions")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if resp := decodeJSON[ErrorResponse](t, rec); resp.Code != "RATE001" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := loadedServer(t, nil)
	rec := get(t, srv, "/")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("%s missing", h)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "https://unpkg.com") {
		t.Errorf("CSP blocks htmx: %q", csp)
	}

	noCSP := loadedServer(t, map[string]string{"SECURITY_ENABLE_CSP": "false"})
	if get(t, noCSP, "/").Header().Get("Content-Security-Policy") != "" {
		t.Error("CSP sent while disabled")
	}
}

func TestPhotos(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "10.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := loadedServer(t, map[string]string{"PHOTOS_DIR": dir})

	body := get(t, srv, "/table?photos=true").Body.String()
	if !strings.Contains(body, `src="/img/10.jpg"`) {
		t.Errorf("photo link missing: %s", body)
	}
	if strings.Contains(body, `data-field="foto"><a`) {
		t.Error("photo column must not be sortable")
	}

	if rec := get(t, srv, "/img/10.jpg"); rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("photo served %d %q", rec.Code, rec.Body.String())
	}

	minerals := decodeJSON[MineralsResponse](t, get(t, srv, "/api/minerals?photos=true&sort=inv"))
	if minerals.Rows[2]["foto"] != "/img/10.jpg" {
		t.Errorf("photo URL in JSON = %q", minerals.Rows[2]["foto"])
	}
}

func TestPhotosDefault_LinksKeepOptOut(t *testing.T) {
	srv := loadedServer(t, map[string]string{"PHOTOS_DEFAULT": "true"})

	if body := get(t, srv, "/table").Body.String(); !strings.Contains(body, `data-field="foto"`) {
		t.Error("photo column hidden despite PHOTOS_DEFAULT")
	}
	body := get(t, srv, "/table?photos=false").Body.String()
	if strings.Contains(body, `data-field="foto"`) {
		t.Error("photos=false ignored")
	}
	if !strings.Contains(body, "photos=false") {
		t.Error("sort links lost photos=false")
	}
}

func TestStaticAndMetrics(t *testing.T) {
	srv := loadedServer(t, nil)

	if rec := get(t, srv, "/static/style.css"); rec.Code != http.StatusOK {
		t.Errorf("style.css status = %d", rec.Code)
	}
	get(t, srv, "/api/regions")
	rec := get(t, srv, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "mineraly_http_requests_total") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
