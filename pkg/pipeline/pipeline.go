// Package pipeline runs the parse → layout → render pipeline for ER
// diagrams, with caching and observability hooks.
//
// Both the CLI and the HTTP API go through a [Runner] so that caching and
// logging behave the same everywhere.
//
// # Stages
//
//  1. Parse: read a JSON or YAML diagram file
//  2. Layout: auto-arrange entities and route relationships
//  3. Render: produce SVG, PNG, PDF, DOT, GraphML, JSON or YAML output
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, "shop.json", pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/diagram"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatGraphML = "graphml"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// Render engines for SVG-based formats.
const (
	// EngineNative draws the computed routes directly.
	EngineNative = "native"
	// EngineGraphviz pins entities in a DOT graph and renders it with neato.
	EngineGraphviz = "graphviz"
)

// DefaultPNGScale is the scale factor used for PNG output.
const DefaultPNGScale = 2.0

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatGraphML, FormatJSON, FormatYAML}

// ValidEngines lists the supported render engines.
var ValidEngines = []string{EngineNative, EngineGraphviz}

// Options configures a pipeline run.
type Options struct {
	// Layout configures the layouter. Nil selects layout.DefaultConfig; a
	// non-nil config is used as is, zero gaps included.
	Layout *layout.Config `json:"layout,omitempty"`
	// Formats lists the artifacts to render. Empty skips rendering.
	Formats []string `json:"formats,omitempty"`
	// Engine selects the SVG renderer (default native).
	Engine string `json:"engine,omitempty"`
	// Detailed adds IDs and positions to rendered labels.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks the render engine name.
func ValidateEngine(engine string) error {
	if !slices.Contains(ValidEngines, engine) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid engine: %q (must be one of: %s)",
			engine, strings.Join(ValidEngines, ", "))
	}
	return nil
}

// ValidateAndSetDefaults fills in defaults and validates all options.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Layout == nil {
		cfg := layout.DefaultConfig()
		o.Layout = &cfg
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// LayoutConfig returns the effective layout config.
func (o *Options) LayoutConfig() layout.Config {
	if o.Layout == nil {
		return layout.DefaultConfig()
	}
	return *o.Layout
}

// LayoutKeyOpts returns the cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.LayoutConfig()
	return cache.LayoutKeyOpts{
		HorizontalGap: cfg.HorizontalGap,
		VerticalGap:   cfg.VerticalGap,
		Heuristic:     cfg.Heuristic.String(),
		MaxIterations: cfg.MaxIterations,
		Transpose:     cfg.Transpose,
	}
}

// RenderKeyOpts returns the cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: format, Engine: o.Engine, Detailed: o.Detailed}
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	Diagram     *diagram.Diagram
	DiagramHash string
	Stats       layout.Stats
	Artifacts   map[string][]byte
	CacheInfo   CacheInfo
	Timing      Timing
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

// Timing holds wall-clock durations per stage.
type Timing struct {
	Parse  time.Duration `json:"parse"`
	Layout time.Duration `json:"layout"`
	Render time.Duration `json:"render"`
}
