package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geostacks/sitehost/internal/api"
	"github.com/geostacks/sitehost/internal/domain"
	"github.com/geostacks/sitehost/internal/engine/memory"
	"github.com/geostacks/sitehost/internal/service"
)

// testServer drives the full router against the in-memory engine.
type testServer struct {
	handler http.Handler
	engine  *memory.Engine
}

func newTestServer(apiKey string) *testServer {
	eng := memory.New("us-west-2")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sites := service.NewSiteService(eng, "geostacks", logger)
	handler := api.NewRouter(sites, apiKey, logger)

	return &testServer{
		handler: handler,
		engine:  eng,
	}
}

func (ts *testServer) request(method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createSite(t *testing.T, id, displayName string) domain.Site {
	t.Helper()

	rr := ts.request("POST", "/sites", domain.CreateSiteRequest{
		ID:     id,
		Params: domain.SiteParams{DisplayName: displayName},
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 creating %q, got %d: %s", id, rr.Code, rr.Body.String())
	}

	var site domain.Site
	_ = json.Unmarshal(rr.Body.Bytes(), &site)
	return site
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer("")

	rr := ts.request("GET", "/health", nil, "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestSiteLifecycle(t *testing.T) {
	ts := newTestServer("")

	// Create
	site := ts.createSite(t, "alice", "alice")
	if site.ID != "alice" {
		t.Errorf("Expected id 'alice', got '%s'", site.ID)
	}
	if site.URL == "" {
		t.Error("Expected a website URL on creation")
	}

	// Get returns the same URL the create returned
	rr := ts.request("GET", "/site/alice", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got domain.Site
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if got.URL != site.URL {
		t.Errorf("Expected url %q from get, got %q", site.URL, got.URL)
	}

	// Delete acks
	rr = ts.request("DELETE", "/site/alice", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var ack domain.DeleteSiteResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &ack)
	if ack.Message == "" {
		t.Error("Expected an ack message from delete")
	}

	// Gone
	rr = ts.request("GET", "/site/alice", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", rr.Code)
	}
}

func TestCreateDuplicate(t *testing.T) {
	ts := newTestServer("")

	first := ts.createSite(t, "alice", "alice")

	// Second create for the same name must conflict
	rr := ts.request("POST", "/sites", domain.CreateSiteRequest{
		ID:     "alice",
		Params: domain.SiteParams{DisplayName: "other"},
	}, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", rr.Code, rr.Body.String())
	}

	// The first stack's outputs are untouched
	rr = ts.request("GET", "/site/alice", nil, "")
	var got domain.Site
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if got.URL != first.URL {
		t.Errorf("Expected url %q after duplicate create, got %q", first.URL, got.URL)
	}
}

func TestGetMissing(t *testing.T) {
	ts := newTestServer("")

	rr := ts.request("GET", "/site/nonexistent", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestDeleteMissing(t *testing.T) {
	ts := newTestServer("")

	rr := ts.request("DELETE", "/site/nonexistent", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestNameReuseAfterDelete(t *testing.T) {
	ts := newTestServer("")

	ts.createSite(t, "alice", "alice")

	rr := ts.request("DELETE", "/site/alice", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// Full teardown frees the name
	ts.createSite(t, "alice", "alice again")
}

func TestListSetSemantics(t *testing.T) {
	ts := newTestServer("")

	for _, id := range []string{"site-a", "site-b", "site-c"} {
		ts.createSite(t, id, id)
	}

	rr := ts.request("DELETE", "/site/site-b", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = ts.request("GET", "/sites", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp domain.ListSitesResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)

	got := make(map[string]bool, len(resp.IDs))
	for _, id := range resp.IDs {
		got[id] = true
	}
	want := map[string]bool{"site-a": true, "site-c": true}
	if len(got) != len(want) {
		t.Fatalf("Expected sites %v, got %v", want, resp.IDs)
	}
	for id := range want {
		if !got[id] {
			t.Errorf("Expected site %q in list, got %v", id, resp.IDs)
		}
	}
}

func TestInvalidRequests(t *testing.T) {
	ts := newTestServer("")

	// Missing id
	rr := ts.request("POST", "/sites", map[string]any{}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	// Malformed body
	req := httptest.NewRequest("POST", "/sites", bytes.NewReader([]byte("{not json")))
	rr2 := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr2.Code)
	}

	// Name that cannot become a bucket
	rr = ts.request("POST", "/sites", domain.CreateSiteRequest{ID: "Not_A_Valid_Name"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestOverlappingDeletes(t *testing.T) {
	ts := newTestServer("")
	ts.createSite(t, "alice", "alice")

	ts.engine.SetDestroyHold(200 * time.Millisecond)

	firstDone := make(chan int, 1)
	go func() {
		firstDone <- ts.request("DELETE", "/site/alice", nil, "").Code
	}()

	// Let the first teardown get in flight, then overlap it
	time.Sleep(50 * time.Millisecond)
	second := ts.request("DELETE", "/site/alice", nil, "")
	if second.Code != http.StatusConflict && second.Code != http.StatusNotFound {
		t.Errorf("Expected status 409 or 404 for overlapping delete, got %d", second.Code)
	}

	if code := <-firstDone; code != http.StatusOK {
		t.Errorf("Expected status 200 for first delete, got %d", code)
	}

	rr := ts.request("GET", "/site/alice", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after teardown, got %d", rr.Code)
	}
}

func TestDeleteRetryAfterPartialTeardown(t *testing.T) {
	ts := newTestServer("")
	ts.createSite(t, "alice", "alice")

	// Partial teardown surfaces as an engine failure and keeps the record
	ts.engine.FailNextDestroy()
	rr := ts.request("DELETE", "/site/alice", nil, "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d: %s", rr.Code, rr.Body.String())
	}

	// The retried delete completes the teardown
	rr = ts.request("DELETE", "/site/alice", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on retry, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = ts.request("GET", "/site/alice", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after retried delete, got %d", rr.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer("secret-key")

	// Request without auth header
	rr := ts.request("GET", "/sites", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Request with the wrong key
	rr = ts.request("GET", "/sites", nil, "wrong-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Request with the right key
	rr = ts.request("GET", "/sites", nil, "secret-key")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	// Health stays open
	rr = ts.request("GET", "/health", nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for health, got %d", rr.Code)
	}
}
