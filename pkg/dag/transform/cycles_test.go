package transform

import (
	"testing"

	"github.com/matzehuels/erdlayout/pkg/dag"
)

func build(n int, edges [][2]int) (*dag.Graph, []dag.EdgeID) {
	g := dag.New()
	for i := 0; i < n; i++ {
		g.AddNode(string(rune('a'+i)), 10, 10)
	}
	ids := make([]dag.EdgeID, len(edges))
	for i, e := range edges {
		ids[i], _ = g.AddEdge(dag.NodeID(e[0]), dag.NodeID(e[1]))
	}
	return g, ids
}

func markedCount(g *dag.Graph) int {
	n := 0
	for _, e := range g.Edges() {
		if e.Marked {
			n++
		}
	}
	return n
}

func TestRemoveCycles_NoCycles(t *testing.T) {
	g, _ := build(3, [][2]int{{0, 1}, {1, 2}})

	if marked := RemoveCycles(g); marked != 0 {
		t.Errorf("RemoveCycles() marked %d edges, want 0", marked)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestRemoveCycles_SimpleCycle(t *testing.T) {
	g, ids := build(2, [][2]int{{0, 1}, {1, 0}})

	if marked := RemoveCycles(g); marked != 1 {
		t.Errorf("RemoveCycles() marked %d edges, want 1", marked)
	}
	// Ties go to the first inserted node, so b -> a is the back edge.
	if !g.Edge(ids[1]).Marked || g.Edge(ids[0]).Marked {
		t.Errorf("marked = [%v %v], want [false true]", g.Edge(ids[0]).Marked, g.Edge(ids[1]).Marked)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (edges are never removed)", g.EdgeCount())
	}
}

func TestRemoveCycles_TriangleCycle(t *testing.T) {
	g, _ := build(3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	if marked := RemoveCycles(g); marked != 1 {
		t.Errorf("RemoveCycles() marked %d edges, want 1", marked)
	}
	if !g.Acyclic() {
		t.Error("unmarked edges still contain a cycle")
	}
}

func TestRemoveCycles_SelfLoop(t *testing.T) {
	g, ids := build(2, [][2]int{{0, 0}, {0, 1}})

	if marked := RemoveCycles(g); marked != 1 {
		t.Errorf("RemoveCycles() marked %d edges, want 1", marked)
	}
	if !g.Edge(ids[0]).Marked {
		t.Error("self-loop was not marked")
	}
}

func TestRemoveCycles_ClearsNodeMarks(t *testing.T) {
	g, _ := build(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 1}})
	RemoveCycles(g)

	for _, n := range g.Nodes() {
		if n.Marked {
			t.Errorf("node %s still marked", n.Label)
		}
	}
}

func TestRemoveCycles_Acyclicity(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
	}{
		{"two cycles sharing a node", 5, [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 3}, {3, 1}, {3, 4}}},
		{"complete digraph", 4, [][2]int{{0, 1}, {1, 0}, {0, 2}, {2, 0}, {0, 3}, {3, 0}, {1, 2}, {2, 1}, {1, 3}, {3, 1}, {2, 3}, {3, 2}}},
		{"parallel back edges", 2, [][2]int{{0, 1}, {1, 0}, {1, 0}}},
		{"disconnected", 6, [][2]int{{0, 1}, {1, 0}, {3, 4}, {4, 5}, {5, 3}}},
		{"empty", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := build(tt.n, tt.edges)
			marked := RemoveCycles(g)
			if marked != markedCount(g) {
				t.Errorf("RemoveCycles() = %d, but %d edges are marked", marked, markedCount(g))
			}
			if !g.Acyclic() {
				t.Error("unmarked edges still contain a cycle")
			}
		})
	}
}

func TestRemoveCycles_Deterministic(t *testing.T) {
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 4}, {4, 2}}
	g1, _ := build(5, edges)
	g2, _ := build(5, edges)
	RemoveCycles(g1)
	RemoveCycles(g2)

	for i := range g1.Edges() {
		if g1.Edges()[i].Marked != g2.Edges()[i].Marked {
			t.Fatalf("edge %d marked differently across runs", i)
		}
	}
}
