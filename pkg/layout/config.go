package layout

import (
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/ordering"
	"github.com/matzehuels/erdlayout/pkg/position"
)

// Config holds the tunables of one Layouter.
type Config struct {
	// HorizontalGap is the space between neighbouring real nodes on a level.
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap" yaml:"horizontal_gap"`
	// VerticalGap is the space between levels.
	VerticalGap float64 `json:"vertical_gap" toml:"vertical_gap" yaml:"vertical_gap"`
	// Heuristic is the crossing reduction sort key.
	Heuristic ordering.Heuristic `json:"heuristic" toml:"heuristic" yaml:"heuristic"`
	// MaxIterations caps crossing reduction; zero means 4 × (depth + 1).
	MaxIterations int `json:"max_iterations" toml:"max_iterations" yaml:"max_iterations"`
	// Transpose enables adjacent swaps during crossing reduction.
	Transpose bool `json:"transpose" toml:"transpose" yaml:"transpose"`
}

// DefaultConfig returns gaps of 100 units, barycenter ordering with
// transposition, and the default iteration cap.
func DefaultConfig() Config {
	return Config{
		HorizontalGap: position.DefaultHorizontalGap,
		VerticalGap:   position.DefaultVerticalGap,
		Heuristic:     ordering.Barycenter,
		Transpose:     true,
	}
}

// Validate checks that gaps are finite and non-negative and that the
// heuristic and iteration cap are valid.
func (c Config) Validate() error {
	if err := errs.ValidateDimension("horizontal gap", c.HorizontalGap); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	if err := errs.ValidateDimension("vertical gap", c.VerticalGap); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	if c.MaxIterations < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "max iterations must not be negative (got %d)", c.MaxIterations)
	}
	if c.Heuristic != ordering.Barycenter && c.Heuristic != ordering.Median {
		return errs.New(errs.ErrCodeInvalidHeuristic, "unknown heuristic %v", c.Heuristic)
	}
	return nil
}

func (c Config) positionOptions() position.Options {
	return position.Options{HorizontalGap: c.HorizontalGap, VerticalGap: c.VerticalGap}
}

func (c Config) orderer() ordering.Orderer {
	return ordering.Sweep{
		Heuristic:     c.Heuristic,
		MaxIterations: c.MaxIterations,
		Transpose:     c.Transpose,
	}
}
