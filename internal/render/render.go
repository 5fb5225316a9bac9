// Package render turns parsed chapter pages into displayable output.
package render

import (
	"io"

	"github.com/zenbook-app/zenbook/internal/book"
)

// Renderer is the interface all output formats implement. Blocks are
// written top to bottom, one visual unit per block.
type Renderer interface {
	// Name returns the format identifier (e.g., "text", "html").
	Name() string

	// Description is a one-line summary for format listings.
	Description() string

	// Render writes the page to w.
	Render(w io.Writer, page *book.Page, opts Options) error
}

// Options contains rendering options. Not every renderer uses every option.
type Options struct {
	Width int  // wrap column for text output, 0 = no wrapping
	Color bool // emit ANSI styling in text output
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		Width: 72,
	}
}
