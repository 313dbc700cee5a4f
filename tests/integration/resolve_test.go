package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/httpserver/routes"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
	"github.com/astroview/voprod/internal/session"
	"github.com/astroview/voprod/internal/sources/profiles"
	"github.com/astroview/voprod/internal/table"
)

// datalinkServer serves a DataLink table the way a table server would.
func datalinkServer(t *testing.T) *httptest.Server {
	t.Helper()
	dl := &table.TableModel{
		ID: "dl-tbl",
		Columns: []table.Column{
			{Name: "semantics"}, {Name: "access_url"}, {Name: "service_def"},
			{Name: "content_type"}, {Name: "content_length"},
			{Name: "local_semantics"}, {Name: "description"}, {Name: "error_message"},
		},
		Rows: [][]string{
			{"#this", "http://archive/a.fits", "", "application/fits", "5000", "", "", ""},
			{"#auxiliary", "http://archive/b.tar", "", "application/x-tar", "900", "", "", ""},
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dl)
	}))
}

func newTestRouter(t *testing.T) (http.Handler, deps.Deps) {
	t.Helper()
	log := logger.NewNop()
	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Resolver:        products.NewResolver(table.NewHTTPFetcher(5*time.Second, log), log),
		Sessions:        session.NewRegistry(),
		Profiles:        profiles.NewSet(),
		RateLimitBurst:  100,
		RateLimitPerMin: 1000,
	}
	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return r, d
}

type resolveResult struct {
	SessionID string         `json:"sessionId"`
	Product   products.Entry `json:"product"`
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestResolveFlow(t *testing.T) {
	ts := datalinkServer(t)
	defer ts.Close()

	router, _ := newTestRouter(t)
	src := &table.TableModel{
		ID:      "obs-tbl",
		Columns: []table.Column{{Name: "s_ra"}, {Name: "s_dec"}},
		Rows:    [][]string{{"210.8", "54.3"}},
	}
	body := map[string]any{
		"datalinkURL": ts.URL + "/dl",
		"sourceTable": src,
		"row":         0,
	}

	// first resolution defaults to the primary product
	w := post(t, router, "/resolve", body)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body = %s", w.Code, w.Body.String())
	}
	var first resolveResult
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Product.DisplayType != products.DisplayFromMenu {
		t.Fatalf("display type = %q, want from-menu", first.Product.DisplayType)
	}
	if first.Product.ActiveIndex != 0 {
		t.Errorf("active index = %d, want 0", first.Product.ActiveIndex)
	}

	// select the auxiliary entry
	w = post(t, router, "/select", map[string]any{
		"sessionId": first.SessionID,
		"lookupKey": ts.URL + "/dl",
		"menuKey":   first.Product.Menu[1].MenuKey,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("select status = %d", w.Code)
	}

	// the next resolution of the same row restores the choice
	body["sessionId"] = first.SessionID
	var second resolveResult
	if err := json.Unmarshal(post(t, router, "/resolve", body).Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	active := second.Product.Menu[second.Product.ActiveIndex]
	if active.MenuKey != first.Product.Menu[1].MenuKey {
		t.Errorf("active key = %q, want the selected %q",
			active.MenuKey, first.Product.Menu[1].MenuKey)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, w.Code)
		}
	}
}
