package render

import (
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/geom"
)

// GraphML namespaces. Geometry and bends use the yWorks (y:) extension.
const (
	graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"
	yWorksNamespace  = "http://www.yworks.com/xml/graphml"
	xsiNamespace     = "http://www.w3.org/2001/XMLSchema-instance"
	graphMLSchema    = "http://graphml.graphdrawing.org/xmlns http://www.yworks.com/xml/schema/graphml/1.1/ygraphml.xsd"
)

type graphML struct {
	XMLName        xml.Name     `xml:"graphml"`
	Xmlns          string       `xml:"xmlns,attr"`
	XmlnsXSI       string       `xml:"xmlns:xsi,attr"`
	XmlnsY         string       `xml:"xmlns:y,attr"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr"`
	Keys           []graphMLKey `xml:"key"`
	Graph          graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID     string `xml:"id,attr"`
	For    string `xml:"for,attr"`
	YFiles string `xml:"yfiles.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string          `xml:"id,attr"`
	Data graphMLNodeData `xml:"data"`
}

type graphMLNodeData struct {
	Key   string     `xml:"key,attr"`
	Shape yShapeNode `xml:"y:ShapeNode"`
}

type yShapeNode struct {
	Geometry yGeometry `xml:"y:Geometry"`
	Label    string    `xml:"y:NodeLabel"`
}

type yGeometry struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type graphMLEdge struct {
	ID     string          `xml:"id,attr"`
	Source string          `xml:"source,attr"`
	Target string          `xml:"target,attr"`
	Data   graphMLEdgeData `xml:"data"`
}

type graphMLEdgeData struct {
	Key  string        `xml:"key,attr"`
	Line yPolyLineEdge `xml:"y:PolyLineEdge"`
}

type yPolyLineEdge struct {
	Path   yPath   `xml:"y:Path"`
	Arrows yArrows `xml:"y:Arrows"`
	Label  string  `xml:"y:EdgeLabel,omitempty"`
}

// yPath holds the route. sx/sy and tx/ty are the end anchors relative to
// the centre of the source and target node; Points are the bends between.
type yPath struct {
	SX     float64  `xml:"sx,attr"`
	SY     float64  `xml:"sy,attr"`
	TX     float64  `xml:"tx,attr"`
	TY     float64  `xml:"ty,attr"`
	Points []yPoint `xml:"y:Point"`
}

type yPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

type yArrows struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

// ToGraphML exports a laid-out diagram as GraphML with yWorks geometry.
//
// Node geometry is the entity bounds in diagram coordinates. Each
// relationship becomes a polyline edge whose end anchors are stored relative
// to the entity centres and whose interior route points become y:Point
// bends. With opts.Detailed the node label carries the entity ID.
func ToGraphML(d *diagram.Diagram, opts Options) ([]byte, error) {
	doc := graphML{
		Xmlns:          graphMLNamespace,
		XmlnsXSI:       xsiNamespace,
		XmlnsY:         yWorksNamespace,
		SchemaLocation: graphMLSchema,
		Keys: []graphMLKey{
			{ID: "nodegraph", For: "node", YFiles: "nodegraphics"},
			{ID: "edgegraph", For: "edge", YFiles: "edgegraphics"},
		},
		Graph: graphMLGraph{ID: "G", EdgeDefault: "directed"},
	}

	ids := make(map[*diagram.Entity]string, len(d.Entities()))
	for i, e := range d.Entities() {
		id := fmt.Sprintf("n%d", i)
		ids[e] = id
		label := e.String()
		if opts.Detailed {
			label = fmt.Sprintf("%s (%s)", label, e.ID)
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphMLNode{
			ID: id,
			Data: graphMLNodeData{
				Key: "nodegraph",
				Shape: yShapeNode{
					Geometry: yGeometry{X: e.Bounds.X, Y: e.Bounds.Y, Width: e.Bounds.Width, Height: e.Bounds.Height},
					Label:    label,
				},
			},
		})
	}

	for i, r := range d.Relationships() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			ID:     fmt.Sprintf("e%d", i),
			Source: ids[r.From],
			Target: ids[r.To],
			Data: graphMLEdgeData{
				Key: "edgegraph",
				Line: yPolyLineEdge{
					Path:   edgePath(r),
					Arrows: yArrows{Source: "none", Target: "standard"},
					Label:  r.Label,
				},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graphml: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func edgePath(r *diagram.Relationship) yPath {
	route := r.Route
	if len(route) < 2 {
		return yPath{}
	}
	src := anchor(route[0], r.From.Bounds)
	dst := anchor(route[len(route)-1], r.To.Bounds)
	p := yPath{SX: src.X, SY: src.Y, TX: dst.X, TY: dst.Y}
	for _, pt := range route[1 : len(route)-1] {
		p.Points = append(p.Points, yPoint{X: pt.X, Y: pt.Y})
	}
	return p
}

func anchor(p geom.Point, b geom.Rect) geom.Point {
	return p.Sub(b.Center())
}
