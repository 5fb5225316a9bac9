package render

import (
	"encoding/json"
	"io"

	"github.com/zenbook-app/zenbook/internal/book"
)

// JSON writes the page structure as indented JSON.
type JSON struct{}

func (JSON) Name() string        { return "json" }
func (JSON) Description() string { return "Parsed blocks and spans as JSON" }

func (JSON) Render(w io.Writer, page *book.Page, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(page)
}
