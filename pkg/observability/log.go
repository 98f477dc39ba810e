package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/layout"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI registers it with --verbose and the server always does.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnParseStart(_ context.Context, source string) {
	h.Logger.Debug("parse started", "source", source)
}

func (h *LogHooks) OnParseComplete(_ context.Context, source string, entities int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("parse failed", "source", source, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("parse complete", "source", source, "entities", entities, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, diagram string, entities int) {
	h.Logger.Debug("layout started", "diagram", diagram, "entities", entities)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, diagram string, s layout.Stats, err error) {
	if err != nil {
		h.Logger.Debug("layout failed", "diagram", diagram, "err", err)
		return
	}
	h.Logger.Debug("layout complete",
		"diagram", diagram,
		"depth", s.Depth,
		"dummies", s.Dummies,
		"crossings", s.Crossings,
		"duration", s.Duration)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render started", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.Logger.Debug("render complete", "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
