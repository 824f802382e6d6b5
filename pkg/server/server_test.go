package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/recipebox/pkg/api"
	"github.com/vango-dev/recipebox/pkg/favsync"
	"github.com/vango-dev/recipebox/pkg/metrics"
	"github.com/vango-dev/recipebox/pkg/page"
)

// fakeRecipeBackend serves the recipe platform REST endpoints.
type fakeRecipeBackend struct {
	mu      sync.Mutex
	fail    bool
	cookies []string
	calls   []string
}

func (b *fakeRecipeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	if c, err := r.Cookie("session"); err == nil {
		b.cookies = append(b.cookies, c.Value)
	}
	fail := b.fail
	b.mu.Unlock()

	if fail {
		http.Error(w, "down", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/recipes/":
		json.NewEncoder(w).Encode(api.RecipePage{
			Recipes: []api.Recipe{
				{ID: "42", Name: "Shakshuka", Cuisine: "Middle Eastern", Difficulty: "Easy"},
				{ID: "7", Name: "Ramen", Cuisine: "Japanese", Difficulty: "Hard"},
			},
			Pagination: api.Pagination{Page: 1, PageSize: 12, TotalItems: 2, TotalPages: 1},
		})
	case r.URL.Path == "/users/favorites":
		json.NewEncoder(w).Encode([]api.Recipe{{ID: "42"}})
	case strings.HasSuffix(r.URL.Path, "/favorite"):
		json.NewEncoder(w).Encode(api.StatusResponse{Status: "success"})
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeRecipeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeRecipeBackend) Cookies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.cookies...)
}

func newTestServer(t *testing.T, backend *fakeRecipeBackend) (*Server, *httptest.Server) {
	t.Helper()
	bs := httptest.NewServer(backend)
	t.Cleanup(bs.Close)

	client, err := api.New(bs.URL)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	reg := prometheus.NewRegistry()
	s := New(Config{}, client, WithMetrics(metrics.New(metrics.WithRegistry(reg)), reg))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestIndexRendersListing(t *testing.T) {
	_, ts := newTestServer(t, &fakeRecipeBackend{})

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>RecipeBox</title>",
		"Shakshuka",
		`id="fav-toggle-42"`,
		`<script src="/_client.js" defer></script>`,
		"bootstrap.min.css",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %s", want)
		}
	}
}

func TestIndexBackendDown(t *testing.T) {
	_, ts := newTestServer(t, &fakeRecipeBackend{fail: true})

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, FlashUnavailable.Message) {
		t.Error("page should show the unavailable flash")
	}
}

func TestClientScript(t *testing.T) {
	_, ts := newTestServer(t, &fakeRecipeBackend{})

	resp, body := get(t, ts.URL+page.ClientScriptPath)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range []string{"recipebox:toast", `data-bs-toggle="tooltip"`, "/_ws"} {
		if !strings.Contains(body, want) {
			t.Errorf("client script missing %s", want)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, &fakeRecipeBackend{})

	resp, body := get(t, ts.URL+PathHealth)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	resp, body = get(t, ts.URL+PathMetrics)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "recipebox_active_sessions") {
		t.Errorf("metrics = %d %s", resp.StatusCode, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, &fakeRecipeBackend{})
	if resp, _ := get(t, ts.URL+"/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

type frame struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	HTML    string `json:"html"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(f) {
			return
		}
	}
}

func TestLiveSession(t *testing.T) {
	backend := &fakeRecipeBackend{}
	s, ts := newTestServer(t, backend)

	header := http.Header{}
	header.Set("Cookie", "session=user-1")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+PathSession, header)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Reconciliation marks 42 as favorited.
	readUntil(t, conn, func(f frame) bool {
		return f.Type == page.FramePatch && f.ID == page.ToggleID("42") && strings.Contains(f.HTML, "btn-danger")
	})

	if err := conn.WriteJSON(page.ClientFrame{Type: page.FrameClick, RecipeID: "42", Control: page.ToggleID("42")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, func(f frame) bool {
		return f.Type == page.FrameToast && f.Level == "info" && f.Message == favsync.MsgRemoved
	})

	calls := backend.Calls()
	if calls[len(calls)-1] != "DELETE /users/recipes/42/favorite" {
		t.Errorf("calls = %v", calls)
	}
	for _, c := range backend.Cookies() {
		if c != "user-1" {
			t.Errorf("forwarded cookie = %q", c)
		}
	}
	if len(backend.Cookies()) != len(calls) {
		t.Errorf("cookie forwarded on %d of %d calls", len(backend.Cookies()), len(calls))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Logf("connection ended with %v", err)
			}
			break
		}
	}
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-2", 1},
		{"page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := pageNumber(r); got != tt.want {
			t.Errorf("pageNumber(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
