// Package pkg provides the libraries behind erdlayout, a layered layout
// engine for entity-relationship diagrams.
//
// # Overview
//
// erdlayout places the entities of a diagram on horizontal levels so that
// relationships point downwards, keeps crossings low, and routes every
// relationship as a polyline. The pkg directory is organized into three areas:
//
//  1. Layout engine: [layout], [dag], [dag/transform], [ordering], [position], [route]
//  2. Diagram model and output: [diagram], [render], [geom]
//  3. Plumbing: [pipeline], [cache], [store], [server], [config], [observability], [errors]
//
// # Architecture
//
// The data flow through erdlayout:
//
//	diagram.json / diagram.yaml
//	         ↓
//	    [diagram] package (entities and relationships)
//	         ↓
//	    [layout] package (Layouter facade)
//	         ↓
//	    [dag/transform] → [ordering] → [position] → [route]
//	         ↓
//	    positions and routes written back into the diagram
//	         ↓
//	    [render] package (SVG, DOT, PNG, PDF) or [diagram] (JSON, YAML)
//
// [pipeline] wraps these steps with caching and is shared by the CLI and the
// HTTP [server].
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/erdlayout/pkg/diagram"
//	    "github.com/matzehuels/erdlayout/pkg/layout"
//	    "github.com/matzehuels/erdlayout/pkg/render"
//	)
//
//	d, _ := diagram.ReadFile("shop.json")
//
//	l := layout.New(layout.DefaultConfig())
//	_ = d.Populate(l)
//	if err := l.Layout(); err != nil {
//	    return err
//	}
//
//	svg := render.SVG(d, render.Options{})
//
// # Main Packages
//
// [layout] - The facade. Callers add their own node and edge values, run
// [layout.Layouter.Layout], and read back locations, routes and statistics.
//
// [dag] - Arena graph used for a single run: real and dummy nodes, original
// and segment edges, level slices and crossing counts.
//
// [dag/transform] - Cycle removal, longest-path levels and normalization
// into a proper layered graph.
//
// [ordering] - Crossing reduction by barycenter or median sweeps with
// adjacent transposition.
//
// [position] - Brandes–Köpf coordinate assignment.
//
// [route] - Bend points for long edges and endpoint anchoring.
//
// [pipeline] - Parse → layout → render with layout and render caches.
//
// [cache] - File, Redis and null caches keyed by content hashes.
//
// [store] - Persistence of laid-out diagrams (memory, bbolt, MongoDB) for
// the HTTP API.
//
// # Testing
//
//	go test ./pkg/...                     # all tests
//	go test -short ./pkg/...              # skip tests that need Graphviz
//	ERDLAYOUT_TEST_REDIS=localhost:6379 go test ./pkg/cache/...
//	ERDLAYOUT_TEST_MONGO=mongodb://localhost:27017 go test ./pkg/store/...
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/dag/transform
// [ordering]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/ordering
// [position]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/position
// [route]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/route
// [diagram]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/diagram
// [render]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/render
// [geom]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/geom
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/erdlayout/pkg/errors
package pkg
