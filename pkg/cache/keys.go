package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of a diagram.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	// RenderKey identifies a rendered artifact of a layout.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts lists the layout options that change the result.
type LayoutKeyOpts struct {
	HorizontalGap float64 `json:"hgap"`
	VerticalGap   float64 `json:"vgap"`
	Heuristic     string  `json:"heuristic"`
	MaxIterations int     `json:"max_iterations"`
	Transpose     bool    `json:"transpose"`
}

// RenderKeyOpts lists the render options that change an artifact.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Engine   string `json:"engine"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the stock [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>" over the diagram hash and opts.
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// RenderKey returns "render:<format>:<sha256>".
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey(fmt.Sprintf("render:%s", opts.Format), layoutHash, opts)
}
