package dag

import (
	"errors"
	"testing"

	"github.com/matzehuels/erdlayout/pkg/geom"
)

func TestAddEdgeUnknownEndpoints(t *testing.T) {
	g := New()
	a := g.AddNode("a", 10, 10)

	if _, err := g.AddEdge(NodeID(7), a); !errors.Is(err, ErrUnknownTailNode) {
		t.Errorf("AddEdge(unknown tail) error = %v, want %v", err, ErrUnknownTailNode)
	}
	if _, err := g.AddEdge(a, NoNode); !errors.Is(err, ErrUnknownHeadNode) {
		t.Errorf("AddEdge(unknown head) error = %v, want %v", err, ErrUnknownHeadNode)
	}
}

func TestNodeDefaults(t *testing.T) {
	g := New()
	a := g.AddNode("a", 120, 60)
	b := g.AddNode("b", 120, 60)
	e, _ := g.AddEdge(a, b)
	d := g.AddDummy(e, 3)

	n := g.Node(a)
	if n.Kind != NodeKindReal || n.Origin != NoEdge {
		t.Errorf("real node = %+v, want kind real without origin", n)
	}
	if n.Root != a || n.Align != a || n.Sink != a {
		t.Errorf("alignment handles of %d = %d/%d/%d, want self", a, n.Root, n.Align, n.Sink)
	}

	dn := g.Node(d)
	if !dn.IsDummy() || dn.Origin != e || dn.Level != 3 {
		t.Errorf("dummy node = %+v, want dummy of edge %d on level 3", dn, e)
	}
	if dn.Width != DummySize || dn.Height != DummySize {
		t.Errorf("dummy size = %gx%g, want %gx%g", dn.Width, dn.Height, DummySize, DummySize)
	}
	if g.DummyCount() != 1 {
		t.Errorf("DummyCount() = %d, want 1", g.DummyCount())
	}
}

func TestPrependBend(t *testing.T) {
	e := &Edge{}
	e.PrependBend(geom.Pt(0, 2))
	e.PrependBend(geom.Pt(0, 1))

	if len(e.Bends) != 2 || e.Bends[0] != geom.Pt(0, 1) || e.Bends[1] != geom.Pt(0, 2) {
		t.Errorf("Bends = %v, want [(0,1) (0,2)]", e.Bends)
	}
}

func TestNeighborsSkipsInactiveEdges(t *testing.T) {
	g := New()
	a := g.AddNode("a", 10, 10)
	b := g.AddNode("b", 10, 10)
	c := g.AddNode("c", 10, 10)
	g.Node(a).Level = 1

	_, _ = g.AddEdge(a, b)
	split, _ := g.AddEdge(a, c)
	_, _ = g.AddEdge(a, a)
	g.Edge(split).Split = true

	got := g.Neighbors(a, 0)
	if len(got) != 1 || got[0] != b {
		t.Errorf("Neighbors(a, 0) = %v, want [%d]", got, b)
	}
	if got := g.Neighbors(b, 1); len(got) != 1 || got[0] != a {
		t.Errorf("Neighbors(b, 1) = %v, want [%d]", got, a)
	}
}

func TestLayers(t *testing.T) {
	g := New()
	a := g.AddNode("a", 10, 10)
	b := g.AddNode("b", 10, 10)
	c := g.AddNode("c", 10, 10)
	g.Node(a).Level = 1
	g.Node(b).Order = 1
	g.Node(c).Order = 0

	layers := g.Layers()
	if len(layers) != 2 {
		t.Fatalf("len(Layers()) = %d, want 2", len(layers))
	}
	if layers[0][0] != c || layers[0][1] != b {
		t.Errorf("level 0 = %v, want [%d %d]", layers[0], c, b)
	}
	if g.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", g.Depth())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(g *Graph)
		wantErr error
	}{
		{
			name: "proper",
			build: func(g *Graph) {
				a, b := g.AddNode("a", 1, 1), g.AddNode("b", 1, 1)
				g.Node(a).Level = 1
				_, _ = g.AddEdge(a, b)
			},
		},
		{
			name: "long edge",
			build: func(g *Graph) {
				a, b := g.AddNode("a", 1, 1), g.AddNode("b", 1, 1)
				g.Node(a).Level = 2
				_, _ = g.AddEdge(a, b)
			},
			wantErr: ErrNonAdjacentLevels,
		},
		{
			name: "same level",
			build: func(g *Graph) {
				a, b := g.AddNode("a", 1, 1), g.AddNode("b", 1, 1)
				_, _ = g.AddEdge(a, b)
			},
			wantErr: ErrNonAdjacentLevels,
		},
		{
			name: "duplicate order",
			build: func(g *Graph) {
				g.AddNode("a", 1, 1)
				g.AddNode("b", 1, 1)
			},
			wantErr: ErrInvalidOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			tt.build(g)
			if err := g.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAcyclic(t *testing.T) {
	g := New()
	a := g.AddNode("a", 1, 1)
	b := g.AddNode("b", 1, 1)
	_, _ = g.AddEdge(a, b)
	back, _ := g.AddEdge(b, a)

	if g.Acyclic() {
		t.Fatal("Acyclic() = true for a 2-cycle")
	}
	if err := g.CheckAcyclic(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("CheckAcyclic() = %v, want ErrGraphHasCycle", err)
	}
	g.Edge(back).Marked = true
	if !g.Acyclic() {
		t.Error("Acyclic() = false after marking the back edge")
	}
	if err := g.CheckAcyclic(); err != nil {
		t.Errorf("CheckAcyclic() = %v, want nil", err)
	}
}

func TestCountLayerCrossings(t *testing.T) {
	// K2,2 drawn with both edges crossing plus one parallel pair.
	g := New()
	u := []NodeID{g.AddNode("u0", 1, 1), g.AddNode("u1", 1, 1), g.AddNode("u2", 1, 1)}
	l := []NodeID{g.AddNode("l0", 1, 1), g.AddNode("l1", 1, 1), g.AddNode("l2", 1, 1)}
	for _, id := range u {
		g.Node(id).Level = 1
	}
	_, _ = g.AddEdge(u[0], l[2])
	_, _ = g.AddEdge(u[1], l[1])
	_, _ = g.AddEdge(u[2], l[0])

	if got := CountLayerCrossings(g, u, l); got != 3 {
		t.Errorf("CountLayerCrossings() = %d, want 3", got)
	}
	if got := CountLayerCrossings(g, u, []NodeID{l[2], l[1], l[0]}); got != 0 {
		t.Errorf("CountLayerCrossings(reversed) = %d, want 0", got)
	}
	if got := CountLayerCrossings(g, nil, l); got != 0 {
		t.Errorf("CountLayerCrossings(empty) = %d, want 0", got)
	}
}

func TestCountPairCrossings(t *testing.T) {
	g := New()
	v := g.AddNode("v", 1, 1)
	w := g.AddNode("w", 1, 1)
	x := g.AddNode("x", 1, 1)
	y := g.AddNode("y", 1, 1)
	g.Node(v).Level, g.Node(w).Level = 1, 1
	_, _ = g.AddEdge(v, y)
	_, _ = g.AddEdge(w, x)

	pos := PosMap([]NodeID{x, y})
	if got := CountPairCrossings(g, v, w, 0, pos); got != 1 {
		t.Errorf("CountPairCrossings(v, w) = %d, want 1", got)
	}
	if got := CountPairCrossings(g, w, v, 0, pos); got != 0 {
		t.Errorf("CountPairCrossings(w, v) = %d, want 0", got)
	}
}
