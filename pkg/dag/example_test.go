package dag_test

import (
	"fmt"

	"github.com/matzehuels/erdlayout/pkg/dag"
)

func ExampleGraph_basic() {
	// orders -> customers -> regions
	g := dag.New()
	orders := g.AddNode("orders", 160, 80)
	customers := g.AddNode("customers", 160, 80)
	regions := g.AddNode("regions", 160, 80)
	_, _ = g.AddEdge(orders, customers)
	_, _ = g.AddEdge(customers, regions)

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Out of orders:", len(g.Out(orders)))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Out of orders: 1
}

func ExampleCountCrossings() {
	// Two parents on level 1 whose children are swapped on level 0.
	g := dag.New()
	a := g.AddNode("a", 10, 10)
	b := g.AddNode("b", 10, 10)
	c := g.AddNode("c", 10, 10)
	d := g.AddNode("d", 10, 10)
	_, _ = g.AddEdge(a, d)
	_, _ = g.AddEdge(b, c)
	g.Node(a).Level, g.Node(b).Level = 1, 1
	g.SetOrder([][]dag.NodeID{{c, d}, {a, b}})

	fmt.Println("Crossings:", dag.CountCrossings(g))
	// Output:
	// Crossings: 1
}
