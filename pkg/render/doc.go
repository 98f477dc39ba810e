// Package render draws laid-out ER diagrams.
//
// Two renderers and one exporter are provided:
//
//   - [SVG] draws entities and relationship routes exactly as computed
//     by the layouter, with arrow heads and labels.
//   - [ToDOT] exports a DOT graph with every entity pinned at its computed
//     position; [RenderSVG] feeds it to Graphviz (neato), which keeps the
//     positions and draws its own edge splines.
//   - [ToGraphML] writes entity geometry and relationship bend points as
//     GraphML with yWorks extensions, for editing in yEd.
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := render.SVG(d, render.Options{})
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
