package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"situs/framework/httpserver"
	"situs/internal/config"
	"situs/internal/indexer"
	"situs/internal/situs"
	"situs/internal/store"
	"situs/internal/store/storetest"
	"situs/internal/web/appcore"
)

type fakeSource struct {
	ogs []indexer.OG
}

func (f fakeSource) FetchOGs(context.Context) ([]indexer.OG, error) {
	return f.ogs, nil
}

var errDatabaseDown = errors.New("database down")

type failingService struct{}

func (failingService) AllOGs(context.Context) (store.OGResult, error) {
	return store.OGResult{}, errDatabaseDown
}

func (failingService) UpdateDatabase(context.Context) error {
	return errDatabaseDown
}

func (failingService) Dashboard(context.Context, string) (situs.Summary, error) {
	return situs.Summary{}, errDatabaseDown
}

func (failingService) Tenants(context.Context) ([]situs.Summary, error) {
	return nil, errDatabaseDown
}

func (failingService) Assets(context.Context, string) ([]situs.Token, error) {
	return nil, errDatabaseDown
}

func (failingService) Certificates(context.Context, string, string) ([]situs.Token, error) {
	return nil, errDatabaseDown
}

func (failingService) TokenMetadata(context.Context, string, string) (situs.TokenMetadata, error) {
	return situs.TokenMetadata{}, errDatabaseDown
}

func indexedOGs() []indexer.OG {
	return []indexer.OG{
		{
			Situs: "acme", Contract: "0xA", TokenID: "1", Owner: "alice", Name: "Deed #1", Kind: "asset",
			Metadata: indexer.JSONObject{"image": json.RawMessage(`"ipfs://deed"`)},
		},
		{Situs: "acme", Contract: "0xC", TokenID: "7", Owner: "alice", Name: "Cert #7", Kind: "certificate"},
		{Situs: "acme", Contract: "0xC", TokenID: "8", Owner: "bob", Name: "Cert #8", Kind: "certificate"},
	}
}

func newSeededService(t *testing.T, ogs []indexer.OG) *situs.Service {
	t.Helper()

	svc := situs.NewService(storetest.New(t), fakeSource{ogs: ogs}, zaptest.NewLogger(t))
	if len(ogs) > 0 {
		if err := svc.UpdateDatabase(context.Background()); err != nil {
			t.Fatalf("seed database: %v", err)
		}
	}
	return svc
}

func newTestHandler(t *testing.T, cfg config.Config, service appcore.SitusService) http.Handler {
	t.Helper()

	handler, err := NewHandler(cfg, service, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func requireBody(t *testing.T, body io.Reader) string {
	t.Helper()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(content)
}

func performRequest(handler http.Handler, method string, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for idx := 0; idx+1 < len(headers); idx += 2 {
		req.Header.Set(headers[idx], headers[idx+1])
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPageRoutesRenderHTML(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, newSeededService(t, indexedOGs()))

	cases := []struct {
		path        string
		mustContain []string
		mustNot     []string
	}{
		{
			path:        "/",
			mustContain: []string{"<title>Situses | situs</title>", `href="/acme"`},
		},
		{
			path: "/acme",
			mustContain: []string{
				"<title>acme dashboard | situs</title>",
				"<h1>acme dashboard</h1>",
				"<dt>Assets</dt><dd>1</dd>",
				"<dt>Certificates</dt><dd>2</dd>",
				`<a href="/acme" class="section-link active">Dashboard</a>`,
			},
		},
		{
			path:        "/nobody",
			mustContain: []string{"<h1>nobody dashboard</h1>", "<dt>Assets</dt><dd>0</dd>"},
		},
		{
			path:        "/api",
			mustContain: []string{"<h1>api dashboard</h1>"},
		},
		{
			path: "/acme/assets",
			mustContain: []string{
				"<h1>acme assets</h1>",
				`data-situs="acme"`,
				`href="/metadata/0xA/1"`,
				"Deed #1",
				`<a href="/acme/assets" class="section-link active">Assets</a>`,
			},
			mustNot: []string{"Cert #7"},
		},
		{
			path:        "/nobody/assets",
			mustContain: []string{"<h1>nobody assets</h1>", "No assets indexed for nobody yet."},
		},
		{
			path:        "/acme/certificates/mine",
			mustContain: []string{"<h1>acme certificates</h1>", "Enter an owner address"},
			mustNot:     []string{"Cert #7", "Cert #8"},
		},
		{
			path:        "/acme/certificates/mine?owner=alice",
			mustContain: []string{"<h1>acme certificates</h1>", "Cert #7", `value="alice"`},
			mustNot:     []string{"Cert #8", "Deed #1"},
		},
		{
			path:        "/a&b",
			mustContain: []string{"<h1>a&amp;b dashboard</h1>"},
		},
	}

	for _, tc := range cases {
		rec := performRequest(handler, http.MethodGet, tc.path)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s status: expected %d, got %d", tc.path, http.StatusOK, rec.Code)
		}
		if contentType := rec.Header().Get("Content-Type"); !strings.Contains(contentType, "text/html") {
			t.Fatalf("%s content-type: expected html, got %q", tc.path, contentType)
		}
		if got := rec.Header().Get("Cache-Control"); got != cacheControlTenantPage {
			t.Fatalf("%s cache-control: expected %q, got %q", tc.path, cacheControlTenantPage, got)
		}

		body := requireBody(t, rec.Body)
		for _, want := range tc.mustContain {
			if !strings.Contains(body, want) {
				t.Fatalf("%s body missing %q", tc.path, want)
			}
		}
		for _, unwanted := range tc.mustNot {
			if strings.Contains(body, unwanted) {
				t.Fatalf("%s body should not contain %q", tc.path, unwanted)
			}
		}
	}
}

func TestHandlerMetadataRouteForwardsParams(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, newSeededService(t, indexedOGs()))

	indexed := performRequest(handler, http.MethodGet, "/metadata/0xA/1")
	if indexed.Code != http.StatusOK {
		t.Fatalf("metadata status: expected %d, got %d", http.StatusOK, indexed.Code)
	}
	body := requireBody(t, indexed.Body)
	for _, want := range []string{`data-contract="0xA"`, `data-token-id="1"`, `class="chroma"`, "ipfs://deed"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metadata body missing %q", want)
		}
	}

	missing := performRequest(handler, http.MethodGet, "/metadata/0xZ/not-a-number")
	if missing.Code != http.StatusOK {
		t.Fatalf("unindexed metadata status: expected %d, got %d", http.StatusOK, missing.Code)
	}
	missingBody := requireBody(t, missing.Body)
	if !strings.Contains(missingBody, `data-token-id="not-a-number"`) {
		t.Fatal("unindexed metadata should still receive the raw token id")
	}
	if !strings.Contains(missingBody, "No metadata indexed for this token.") {
		t.Fatal("unindexed metadata should render the empty state")
	}

	shadowed := performRequest(handler, http.MethodGet, "/metadata/certificates/mine")
	shadowedBody := requireBody(t, shadowed.Body)
	if !strings.Contains(shadowedBody, `data-contract="certificates"`) {
		t.Fatal("static metadata segment should outrank the situs route")
	}
}

func TestHandlerAPIRoutes(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, newSeededService(t, indexedOGs()))

	rec := performRequest(handler, http.MethodGet, "/api/getOGs")
	if rec.Code != http.StatusOK {
		t.Fatalf("getOGs status: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("getOGs content-type: expected json, got %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != cacheControlNoStore {
		t.Fatalf("getOGs cache-control: expected %q, got %q", cacheControlNoStore, got)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	update := performRequest(handler, http.MethodGet, "/api/updateDatabase")
	if update.Code != http.StatusOK {
		t.Fatalf("updateDatabase status: expected %d, got %d", http.StatusOK, update.Code)
	}
	if body := requireBody(t, update.Body); body != `{"message":"Database updated successfully"}` {
		t.Fatalf("updateDatabase body: got %q", body)
	}

	post := performRequest(handler, http.MethodPost, "/api/getOGs")
	if post.Code != http.StatusMethodNotAllowed {
		t.Fatalf("post status: expected %d, got %d", http.StatusMethodNotAllowed, post.Code)
	}
	if got := post.Header().Get("Allow"); got != "GET, HEAD" {
		t.Fatalf("post allow header: got %q", got)
	}
	if body := requireBody(t, post.Body); body != `{"error":"Method Not Allowed"}` {
		t.Fatalf("post body: got %q", body)
	}

	head := performRequest(handler, http.MethodHead, "/api/getOGs")
	if head.Code != http.StatusOK || head.Body.Len() != 0 {
		t.Fatalf("head: expected empty 200, got %d with %d bytes", head.Code, head.Body.Len())
	}
}

func TestHandlerAPIEmptyDatabase(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, newSeededService(t, nil))

	rec := performRequest(handler, http.MethodGet, "/api/getOGs")
	if rec.Code != http.StatusOK {
		t.Fatalf("getOGs status: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if body := requireBody(t, rec.Body); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestHandlerAPIFailuresHideCause(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, failingService{})

	cases := []struct {
		path string
		body string
	}{
		{path: "/api/getOGs", body: `{"error":"Failed to fetch OGs"}`},
		{path: "/api/updateDatabase", body: `{"error":"Failed to update database"}`},
	}

	for _, tc := range cases {
		rec := performRequest(handler, http.MethodGet, tc.path)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s status: expected %d, got %d", tc.path, http.StatusInternalServerError, rec.Code)
		}
		body := requireBody(t, rec.Body)
		if body != tc.body {
			t.Fatalf("%s body: expected %q, got %q", tc.path, tc.body, body)
		}
		if strings.Contains(body, errDatabaseDown.Error()) {
			t.Fatalf("%s leaked the underlying error", tc.path)
		}
	}

	page := performRequest(handler, http.MethodGet, "/acme")
	if page.Code != http.StatusInternalServerError {
		t.Fatalf("page loader failure: expected %d, got %d", http.StatusInternalServerError, page.Code)
	}
}

func TestHandlerUpdateTokenGuard(t *testing.T) {
	handler := newTestHandler(t, config.Config{UpdateToken: "secret"}, newSeededService(t, indexedOGs()))

	denied := performRequest(handler, http.MethodGet, "/api/updateDatabase")
	if denied.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected %d, got %d", http.StatusUnauthorized, denied.Code)
	}
	if body := requireBody(t, denied.Body); body != `{"error":"Unauthorized"}` {
		t.Fatalf("missing token body: got %q", body)
	}

	wrong := performRequest(handler, http.MethodGet, "/api/updateDatabase", "Authorization", "Bearer nope")
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: expected %d, got %d", http.StatusUnauthorized, wrong.Code)
	}

	allowed := performRequest(handler, http.MethodGet, "/api/updateDatabase", "Authorization", "Bearer secret")
	if allowed.Code != http.StatusOK {
		t.Fatalf("valid token: expected %d, got %d", http.StatusOK, allowed.Code)
	}

	reads := performRequest(handler, http.MethodGet, "/api/getOGs")
	if reads.Code != http.StatusOK {
		t.Fatalf("getOGs should stay open: got %d", reads.Code)
	}
}

func TestHandlerChrome(t *testing.T) {
	handler := newTestHandler(t, config.Config{Announcement: "**Maintenance** tonight"}, newSeededService(t, nil))

	rec := performRequest(handler, http.MethodGet, "/acme")
	body := requireBody(t, rec.Body)
	if !strings.Contains(body, `<aside class="announcement-banner" role="status"><strong>Maintenance</strong> tonight</aside>`) {
		t.Fatalf("expected announcement banner, got %s", body)
	}
	if !strings.Contains(body, "--font-sans:") || !strings.Contains(body, "--font-mono:") {
		t.Fatal("expected font css variables in the document head")
	}

	htmx := requireBody(t, performRequest(handler, http.MethodGet, "/acme", "HX-Request", "true").Body)
	if !strings.Contains(htmx, "<!doctype html>") || !strings.Contains(htmx, "situs-nav") {
		t.Fatal("every page request should render the full document")
	}

	quiet := newTestHandler(t, config.Config{}, newSeededService(t, nil))
	quietBody := requireBody(t, performRequest(quiet, http.MethodGet, "/acme").Body)
	if strings.Contains(quietBody, "announcement-banner") {
		t.Fatal("empty announcement should render nothing")
	}
}

func TestHandlerNotFoundHealthAndStatic(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, newSeededService(t, nil))

	recHealth := performRequest(handler, http.MethodGet, "/healthz")
	if recHealth.Code != http.StatusOK {
		t.Fatalf("healthz status: expected %d, got %d", http.StatusOK, recHealth.Code)
	}
	if body := strings.TrimSpace(requireBody(t, recHealth.Body)); body != "ok" {
		t.Fatalf("healthz body: expected %q, got %q", "ok", body)
	}

	recMissing := performRequest(handler, http.MethodGet, "/acme/assets/extra/deep")
	if recMissing.Code != http.StatusNotFound {
		t.Fatalf("unmatched status: expected %d, got %d", http.StatusNotFound, recMissing.Code)
	}
	if body := requireBody(t, recMissing.Body); !strings.Contains(body, "<h1>404 Not Found</h1>") {
		t.Fatalf("unmatched body missing not found heading")
	}

	recPost := performRequest(handler, http.MethodPost, "/acme")
	if recPost.Code != http.StatusMethodNotAllowed {
		t.Fatalf("page post status: expected %d, got %d", http.StatusMethodNotAllowed, recPost.Code)
	}

	recStatic := performRequest(handler, http.MethodGet, "/static/site.css")
	if recStatic.Code != http.StatusOK {
		t.Fatalf("static status: expected %d, got %d", http.StatusOK, recStatic.Code)
	}
	if got := recStatic.Header().Get("Cache-Control"); got != cacheControlPublicHour {
		t.Fatalf("static cache-control: got %q", got)
	}
	if body := requireBody(t, recStatic.Body); !strings.Contains(body, "var(--font-sans)") {
		t.Fatal("static stylesheet should use the font variables")
	}
}

func TestHandlerReservedSegmentsNeverReachTenantPages(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	handler, err := NewHandler(config.Config{}, newSeededService(t, indexedOGs()), zaptest.NewLogger(t),
		httpserver.Mount{Pattern: "/metrics", Handler: metrics},
	)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	if body := requireBody(t, performRequest(handler, http.MethodGet, "/metrics").Body); body != "metrics" {
		t.Fatalf("metrics mount: got %q", body)
	}

	for _, path := range []string{"/healthz/assets", "/metrics/assets", "/static/assets", "/healthz/certificates/mine"} {
		rec := performRequest(handler, http.MethodGet, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s status: expected %d, got %d", path, http.StatusNotFound, rec.Code)
		}
		if body := requireBody(t, rec.Body); strings.Contains(body, "situs-nav") {
			t.Fatalf("%s rendered a tenant page", path)
		}
	}

	if rec := performRequest(handler, http.MethodGet, "/acme/assets"); rec.Code != http.StatusOK {
		t.Fatalf("tenant assets status: expected %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestHandlerUnauthorizedUpdateIsNotLoggedAsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler, err := NewHandler(config.Config{UpdateToken: "secret"}, newSeededService(t, nil), zap.New(core))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := performRequest(handler, http.MethodGet, "/api/updateDatabase")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if entries := logs.FilterLevelExact(zapcore.ErrorLevel).All(); len(entries) != 0 {
		t.Fatalf("rejected token should not log errors, got %v", entries)
	}
}
