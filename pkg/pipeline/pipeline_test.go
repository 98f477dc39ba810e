package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/diagram"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/ordering"
)

const shopJSON = `{
  "name": "shop",
  "entities": [
    {"id": "customer"}, {"id": "order"}, {"id": "item"}, {"id": "product"}
  ],
  "relationships": [
    {"source": "order", "target": "customer"},
    {"source": "item", "target": "order"},
    {"source": "item", "target": "product"},
    {"source": "item", "target": "customer"}
  ]
}`

func writeDiagram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.json")
	if err := os.WriteFile(path, []byte(shopJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"yaml", false},
		{"graphml", false},
		{"invalid", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Layout == nil || *o.Layout != layout.DefaultConfig() || o.Engine != EngineNative {
		t.Errorf("defaults not applied: %+v", o)
	}

	bad := Options{Layout: &layout.Config{HorizontalGap: -1}}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("negative gap = %v, want INVALID_CONFIG", err)
	}
	bad = Options{Engine: "ascii"}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown engine accepted")
	}
}

func TestValidateAndSetDefaults_ExplicitZero(t *testing.T) {
	o := Options{Layout: &layout.Config{Heuristic: ordering.Barycenter}}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	want := layout.Config{Heuristic: ordering.Barycenter}
	if *o.Layout != want {
		t.Errorf("layout = %+v, want %+v", *o.Layout, want)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	median := layout.DefaultConfig()
	median.Heuristic = ordering.Median
	a := Options{}
	b := Options{Layout: &median}
	k := cache.NewDefaultKeyer()
	if k.LayoutKey("h", a.LayoutKeyOpts()) == k.LayoutKey("h", b.LayoutKeyOpts()) {
		t.Error("heuristic does not influence the layout key")
	}

	zero := layout.Config{}
	c := Options{Layout: &zero}
	if k.LayoutKey("h", a.LayoutKeyOpts()) == k.LayoutKey("h", c.LayoutKeyOpts()) {
		t.Error("a zero config shares the default layout key")
	}
}

func TestRun_ZeroGaps(t *testing.T) {
	r := quietRunner(t, cache.NewNullCache())
	defer r.Close()
	d, err := diagram.Read(strings.NewReader(shopJSON))
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.Config{Heuristic: ordering.Barycenter}
	if _, err := r.Run(context.Background(), d, Options{Layout: &cfg}); err != nil {
		t.Fatal(err)
	}

	for id, wantY := range map[string]float64{"item": 0, "order": 80, "customer": 160} {
		e, ok := d.Entity(id)
		if !ok {
			t.Fatalf("entity %s missing", id)
		}
		if e.Bounds.Y != wantY {
			t.Errorf("%s y = %v, want %v", id, e.Bounds.Y, wantY)
		}
	}
}

func TestExecute(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r := quietRunner(t, c)
	defer r.Close()
	path := writeDiagram(t)
	opts := Options{Formats: []string{FormatSVG, FormatJSON, FormatDOT}}

	first, err := r.Execute(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Nodes != 4 || first.Stats.Dummies != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("artifact %s missing", f)
		}
	}
	if !strings.Contains(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not SVG")
	}

	second, err := r.Execute(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if second.Stats != first.Stats {
		t.Errorf("cached stats %+v differ from %+v", second.Stats, first.Stats)
	}
	for i, e := range second.Diagram.Entities() {
		if e.Bounds != first.Diagram.Entities()[i].Bounds {
			t.Errorf("%s: cached bounds %v, computed %v", e.ID, e.Bounds, first.Diagram.Entities()[i].Bounds)
		}
	}
	if second.DiagramHash != first.DiagramHash {
		t.Error("diagram hash is not stable")
	}
}

func TestExecute_Refresh(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	r := quietRunner(t, c)
	path := writeDiagram(t)

	if _, err := r.Execute(context.Background(), path, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(context.Background(), path, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecute_Errors(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, filepath.Join(t.TempDir(), "missing.json"), Options{}); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := r.Execute(ctx, writeDiagram(t), Options{Formats: []string{"gif"}}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("bad format = %v, want INVALID_FORMAT", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   int
	misses int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	h.hits++
	h.mu.Unlock()
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	h.misses++
	h.mu.Unlock()
}

func TestLayout_CacheHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	c, _ := cache.NewFileCache(t.TempDir())
	r := quietRunner(t, c)
	for i := 0; i < 2; i++ {
		d, err := diagram.Read(strings.NewReader(shopJSON))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := r.LayoutWithCacheInfo(context.Background(), d, Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.hits != 1 || hooks.misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", hooks.hits, hooks.misses)
	}
}

func TestRender_YAML(t *testing.T) {
	d, _ := diagram.Read(strings.NewReader(shopJSON))
	if _, err := Layout(context.Background(), d, layout.DefaultConfig(), log.New(io.Discard)); err != nil {
		t.Fatal(err)
	}
	data, err := Render(context.Background(), d, FormatYAML, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "id: customer") {
		t.Errorf("yaml output:\n%s", data)
	}
}
