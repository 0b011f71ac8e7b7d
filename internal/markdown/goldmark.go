package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// GoldmarkOptions tune the default renderer.
type GoldmarkOptions struct {
	HardWraps bool
	// Unsafe passes raw HTML in bodies through to the output. Content here
	// is first-party, so this defaults to on in the pipeline configuration.
	Unsafe bool
}

// GoldmarkRenderer is the default Renderer: CommonMark plus GFM extensions
// with stable auto heading IDs. The engine is built once; Convert is safe for
// concurrent use, so one instance serves all workers.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

// NewGoldmarkRenderer builds a renderer with the given options.
func NewGoldmarkRenderer(opts GoldmarkOptions) *GoldmarkRenderer {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &GoldmarkRenderer{engine: engine}
}

// Render converts a Markdown body into HTML.
func (r *GoldmarkRenderer) Render(ctx context.Context, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}
