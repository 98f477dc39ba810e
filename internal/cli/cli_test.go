package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/ordering"
)

const shopJSON = `{
  "name": "shop",
  "entities": [{"id": "customer"}, {"id": "order"}, {"id": "item"}],
  "relationships": [
    {"source": "order", "target": "customer"},
    {"source": "item", "target": "order"}
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

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := testCLI(t).RootCommand()
	want := []string{"layout", "render", "inspect", "serve", "cache", "config", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestOptions_FlagsOverrideConfig(t *testing.T) {
	c := testCLI(t)
	c.Config.Layout.HorizontalGap = 40

	var flags layoutFlags
	cmd := &cobra.Command{Use: "x"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--vgap", "30", "--heuristic", "median", "--no-transpose"}); err != nil {
		t.Fatal(err)
	}

	opts, err := c.options(cmd, &flags)
	if err != nil {
		t.Fatal(err)
	}
	l := opts.Layout
	if l.HorizontalGap != 40 || l.VerticalGap != 30 || l.Heuristic != ordering.Median || l.Transpose {
		t.Errorf("layout = %+v", l)
	}

	if err := cmd.ParseFlags([]string{"--heuristic", "random"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.options(cmd, &flags); err == nil {
		t.Error("expected an error for an unknown heuristic")
	}
}

func TestOptions_ZeroGapsKept(t *testing.T) {
	c := testCLI(t)

	var flags layoutFlags
	cmd := &cobra.Command{Use: "x"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--hgap", "0", "--vgap", "0", "--no-transpose"}); err != nil {
		t.Fatal(err)
	}
	opts, err := c.options(cmd, &flags)
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	l := opts.Layout
	if l.HorizontalGap != 0 || l.VerticalGap != 0 || l.Transpose {
		t.Errorf("layout = %+v, want zero gaps without transpose", *l)
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeDiagram(t)
	output := filepath.Join(filepath.Dir(input), "out.yaml")

	if _, err := execute(t, testCLI(t), "layout", input, "-o", output, "--vgap", "50"); err != nil {
		t.Fatal(err)
	}
	d, err := diagram.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	customer, _ := d.Entity("customer")
	if customer.Bounds.Y != 2*(diagram.DefaultHeight+50) {
		t.Errorf("customer y = %v", customer.Bounds.Y)
	}
	for _, r := range d.Relationships() {
		if len(r.Route) < 2 {
			t.Errorf("relationship %s has no route", r.ID)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeDiagram(t)
	base := filepath.Join(filepath.Dir(input), "shop")

	if _, err := execute(t, testCLI(t), "render", input, "-f", "svg,dot,graphml,json"); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".svg", ".dot", ".graphml", ".layout.json"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			t.Errorf("missing %s: %v", ext, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", ext)
		}
	}
	svg, _ := os.ReadFile(base + ".svg")
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output is not SVG")
	}
	graphml, _ := os.ReadFile(base + ".graphml")
	if !strings.Contains(string(graphml), "<y:Geometry") {
		t.Error("graphml output has no node geometry")
	}

	if _, err := execute(t, testCLI(t), "render", input, "-f", "gif"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestInspectCommand_Plain(t *testing.T) {
	if _, err := execute(t, testCLI(t), "inspect", writeDiagram(t), "--plain", "--no-cache"); err != nil {
		t.Fatal(err)
	}
}
