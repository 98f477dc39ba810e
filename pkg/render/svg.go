package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/geom"
)

// DefaultMargin is used by [SVG] when Options.Margin is zero.
const DefaultMargin = 20

const svgStyle = `
    .entity { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .entity-text { font-family: sans-serif; font-size: 14px; fill: #222222; }
    .relationship { fill: none; stroke: #555555; stroke-width: 1.2; marker-end: url(#arrow); }
    .relationship-text { font-family: sans-serif; font-size: 11px; fill: #555555; }`

// SVG draws d with its computed entity bounds and relationship routes.
func SVG(d *diagram.Diagram, opts Options) []byte {
	margin := opts.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	box := d.Bounds()
	w, h := box.Width+2*margin, box.Height+2*margin
	shift := geom.Pt(margin-box.X, margin-box.Y)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">` + "\n")
	buf.WriteString(`      <path d="M 0 0 L 10 5 L 0 10 z" fill="#555555"/>` + "\n")
	buf.WriteString("    </marker>\n")
	fmt.Fprintf(&buf, "    <style>%s\n    </style>\n", svgStyle)
	buf.WriteString("  </defs>\n")

	for _, r := range d.Relationships() {
		renderRelationship(&buf, r, shift)
	}
	for _, e := range d.Entities() {
		renderEntity(&buf, e, shift, opts.Detailed)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEntity(buf *bytes.Buffer, e *diagram.Entity, shift geom.Point, detailed bool) {
	b := e.Bounds.Translate(shift.X, shift.Y)
	c := b.Center()
	fmt.Fprintf(buf, `  <rect id="entity-%s" class="entity" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6"/>`+"\n",
		html.EscapeString(e.ID), b.X, b.Y, b.Width, b.Height)
	fmt.Fprintf(buf, `  <text class="entity-text" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		c.X, c.Y, html.EscapeString(entityLabel(e, false)))
	if detailed {
		fmt.Fprintf(buf, `  <text class="relationship-text" x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
			c.X, b.Bottom()-6, html.EscapeString(e.ID))
	}
}

func renderRelationship(buf *bytes.Buffer, r *diagram.Relationship, shift geom.Point) {
	if len(r.Route) < 2 {
		return
	}
	pts := make([]string, len(r.Route))
	for i, p := range r.Route {
		p = p.Add(shift)
		pts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `  <polyline id="rel-%s" class="relationship" points="%s"/>`+"\n",
		html.EscapeString(r.ID), strings.Join(pts, " "))

	if r.Label != "" {
		mid := r.Route[len(r.Route)/2].Add(shift)
		fmt.Fprintf(buf, `  <text class="relationship-text" x="%.2f" y="%.2f" dx="4">%s</text>`+"\n",
			mid.X, mid.Y, html.EscapeString(r.Label))
	}
}
