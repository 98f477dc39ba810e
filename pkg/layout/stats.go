package layout

import "time"

// Stats summarizes the last successful layout run.
type Stats struct {
	Nodes            int           `json:"nodes" bson:"nodes"`
	Edges            int           `json:"edges" bson:"edges"`
	Dummies          int           `json:"dummies" bson:"dummies"`
	FeedbackEdges    int           `json:"feedback_edges" bson:"feedback_edges"`
	Depth            int           `json:"depth" bson:"depth"`
	InitialCrossings int           `json:"initial_crossings" bson:"initial_crossings"`
	Crossings        int           `json:"crossings" bson:"crossings"`
	Iterations       int           `json:"iterations" bson:"iterations"`
	Duration         time.Duration `json:"duration" bson:"duration"`
}
