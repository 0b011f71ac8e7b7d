// Package markdown renders document bodies into markup and derives plain-text
// excerpts from the result.
package markdown

import "context"

// Renderer turns a raw document body into rendered markup. The pipeline
// treats the output as opaque: it flows into page output untouched, so any
// engine with this shape can be swapped in.
type Renderer interface {
	Render(ctx context.Context, body []byte) ([]byte, error)
}
