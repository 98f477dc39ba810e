package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/store"
)

const shop = `{
  "name": "shop",
  "entities": [{"id": "customer"}, {"id": "order"}, {"id": "item"}],
  "relationships": [
    {"source": "order", "target": "customer"},
    {"source": "item", "target": "order"}
  ]
}`

func newTestServer(t *testing.T, opts Options) (*Server, *store.MemoryStore) {
	t.Helper()
	logger := log.New(io.Discard)
	st := store.NewMemoryStore()
	opts.Logger = logger
	return New(pipeline.NewRunner(nil, nil, logger), st, opts), st
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateAndFetch(t *testing.T) {
	s, st := newTestServer(t, Options{})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/layouts", shop)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[LayoutResponse](t, rec)
	if created.ID == "" || created.Name != "shop" {
		t.Fatalf("created = %+v", created.Record)
	}
	if got := rec.Header().Get("Location"); got != "/v1/layouts/"+created.ID {
		t.Errorf("Location = %q", got)
	}
	if created.Stats.Nodes != 3 || created.Stats.Depth != 2 {
		t.Errorf("stats = %+v", created.Stats)
	}

	d, err := diagram.Read(bytes.NewReader(created.Document))
	if err != nil {
		t.Fatal(err)
	}
	item, _ := d.Entity("item")
	customer, _ := d.Entity("customer")
	if item.Bounds.Y != 0 || customer.Bounds.Y != 360 {
		t.Errorf("item y = %v, customer y = %v", item.Bounds.Y, customer.Bounds.Y)
	}

	if _, err := st.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("not stored: %v", err)
	}

	rec = do(t, h, http.MethodGet, "/v1/layouts/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode[LayoutResponse](t, rec)
	if !bytes.Equal(bytes.TrimSpace(got.Document), bytes.TrimSpace(created.Document)) {
		t.Error("fetched document differs from created one")
	}

	rec = do(t, h, http.MethodGet, "/v1/layouts/"+created.ID+"/svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("svg status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not SVG")
	}

	rec = do(t, h, http.MethodGet, "/v1/layouts", "")
	list := decode[[]store.Record](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	if rec := do(t, h, http.MethodDelete, "/v1/layouts/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/layouts/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rec.Code)
	}
}

func TestCreate_Overrides(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s.Handler(), http.MethodPost, "/v1/layouts?name=renamed&heuristic=median", shop)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[LayoutResponse](t, rec); got.Name != "renamed" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestCreate_ZeroGaps(t *testing.T) {
	s, _ := newTestServer(t, Options{Layout: &layout.Config{}})
	rec := do(t, s.Handler(), http.MethodPost, "/v1/layouts", shop)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	d, err := diagram.Read(bytes.NewReader(decode[LayoutResponse](t, rec).Document))
	if err != nil {
		t.Fatal(err)
	}
	customer, _ := d.Entity("customer")
	if customer.Bounds.Y != 160 {
		t.Errorf("customer y = %v, want 160 with no vertical gap", customer.Bounds.Y)
	}
}

func TestErrors(t *testing.T) {
	s, _ := newTestServer(t, Options{MaxBodyBytes: 256})
	big := `{"entities": [` + strings.Repeat(`{"label": "padding"},`, 40) + `{}]}`

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   errs.Code
	}{
		{"malformed json", http.MethodPost, "/v1/layouts", "{", http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"unknown entity", http.MethodPost, "/v1/layouts",
			`{"entities": [{"id": "a"}], "relationships": [{"source": "a", "target": "b"}]}`,
			http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"negative size", http.MethodPost, "/v1/layouts",
			`{"entities": [{"id": "a", "width": -1}]}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad heuristic", http.MethodPost, "/v1/layouts?heuristic=random", shop,
			http.StatusBadRequest, errs.ErrCodeInvalidHeuristic},
		{"too large", http.MethodPost, "/v1/layouts", big, http.StatusRequestEntityTooLarge, errs.ErrCodeInvalidFormat},
		{"missing", http.MethodGet, "/v1/layouts/nope", "", http.StatusNotFound, errs.ErrCodeNotFound},
		{"missing svg", http.MethodGet, "/v1/layouts/nope/svg", "", http.StatusNotFound, errs.ErrCodeNotFound},
		{"delete missing", http.MethodDelete, "/v1/layouts/nope", "", http.StatusNotFound, errs.ErrCodeNotFound},
		{"bad limit", http.MethodGet, "/v1/layouts?limit=x", "", http.StatusBadRequest, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeInvalidConfig, http.StatusBadRequest},
		{errs.ErrCodeInvalidTopology, http.StatusUnprocessableEntity},
		{errs.ErrCodeInvalidState, http.StatusConflict},
		{errs.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errs.ErrCodeStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
	h.status = append(h.status, status)
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t, Options{})
	do(t, s.Handler(), http.MethodGet, "/v1/layouts/abc", "")
	do(t, s.Handler(), http.MethodGet, "/healthz", "")

	want := []string{"GET /v1/layouts/{id}/", "GET /healthz"}
	if len(hooks.routes) != len(want) {
		t.Fatalf("routes = %v", hooks.routes)
	}
	if hooks.routes[1] != want[1] || hooks.status[0] != http.StatusNotFound || hooks.status[1] != http.StatusOK {
		t.Errorf("routes = %v, status = %v", hooks.routes, hooks.status)
	}
	if !strings.HasPrefix(hooks.routes[0], "GET /v1/layouts/{id}") {
		t.Errorf("route = %q", hooks.routes[0])
	}
}
