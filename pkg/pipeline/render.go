package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/render"
)

// Render produces one artifact of the laid-out diagram d.
func Render(ctx context.Context, d *diagram.Diagram, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(ctx, d, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

func renderFormat(ctx context.Context, d *diagram.Diagram, format string, opts Options) ([]byte, error) {
	ropts := render.Options{Detailed: opts.Detailed}

	switch format {
	case FormatSVG:
		return renderSVG(ctx, d, opts.Engine, ropts)
	case FormatPNG:
		svg, err := renderSVG(ctx, d, opts.Engine, ropts)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, DefaultPNGScale)
	case FormatPDF:
		svg, err := renderSVG(ctx, d, opts.Engine, ropts)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	case FormatDOT:
		return []byte(render.ToDOT(d, ropts)), nil
	case FormatGraphML:
		return render.ToGraphML(d, ropts)
	case FormatJSON:
		var buf bytes.Buffer
		err := diagram.Write(d, &buf)
		return buf.Bytes(), err
	case FormatYAML:
		var buf bytes.Buffer
		err := diagram.WriteYAML(d, &buf)
		return buf.Bytes(), err
	default:
		return nil, ValidateFormat(format)
	}
}

func renderSVG(ctx context.Context, d *diagram.Diagram, engine string, opts render.Options) ([]byte, error) {
	if engine == EngineGraphviz {
		return render.RenderSVG(ctx, render.ToDOT(d, opts))
	}
	return render.SVG(d, opts), nil
}
