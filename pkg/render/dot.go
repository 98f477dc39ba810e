package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// pointsPerInch converts diagram units to Graphviz inches.
const pointsPerInch = 72

// Options configures rendering.
type Options struct {
	// Detailed adds the entity ID and position to labels.
	Detailed bool
	// Margin is the space added around the diagram bounds.
	Margin float64
}

// ToDOT converts a laid-out diagram to Graphviz DOT.
//
// Every entity is pinned (pos="x,y!") at its center, with the y axis flipped
// because Graphviz grows upward. Positions are given in diagram units and
// inputscale=72 makes Graphviz read them as points.
func ToDOT(d *diagram.Diagram, opts Options) string {
	box := d.Bounds()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  inputscale=%d;\n", pointsPerInch)
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=14];\n")
	buf.WriteString("\n")

	for _, e := range d.Entities() {
		c := e.Bounds.Center()
		attrs := []string{
			fmt.Sprintf("label=%q", entityLabel(e, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X-box.X), num(box.Bottom()-c.Y)),
			fmt.Sprintf("width=%s", num(e.Bounds.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(e.Bounds.Height/pointsPerInch)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range d.Relationships() {
		if r.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", r.From.ID, r.To.ID, r.Label)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", r.From.ID, r.To.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func entityLabel(e *diagram.Entity, detailed bool) string {
	if !detailed {
		return e.String()
	}
	return fmt.Sprintf("%s\nid: %s\nat: %s", e.String(), e.ID, e.Bounds.Location())
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph produced by [ToDOT] to SVG with the neato
// engine, which honours pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
