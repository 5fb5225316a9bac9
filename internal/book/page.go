package book

import "github.com/zenbook-app/zenbook/internal/markup"

// PageVersion is the version of the page representation.
const PageVersion = "1.0"

// Page is a chapter prepared for display: its header and the parsed body.
type Page struct {
	Version string  `json:"version"`
	Header  Header  `json:"header"`
	Blocks  []Block `json:"blocks"`
}

// Header holds the chapter heading shown above the body.
type Header struct {
	Number   int    `json:"number,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

// Block is a parsed body block together with its inline spans. Spans are
// only set for paragraphs and tips.
type Block struct {
	markup.Block
	Spans []markup.Span `json:"spans,omitempty"`
}

// NewPage parses the chapter body and returns the page to render.
func NewPage(ch Chapter) *Page {
	p := &Page{
		Version: PageVersion,
		Header: Header{
			Number:   ch.Number,
			Title:    ch.Title,
			Subtitle: ch.Subtitle,
			Icon:     ch.Icon,
		},
	}
	p.SetBody(ch.Body)
	return p
}

// SetBody replaces the page blocks with the parse of body.
func (p *Page) SetBody(body string) {
	parsed := markup.ParseBlocks(body)
	p.Blocks = make([]Block, 0, len(parsed))
	for _, b := range parsed {
		p.Blocks = append(p.Blocks, Block{Block: b, Spans: b.Spans()})
	}
}

// Count returns the number of blocks of the given kind.
func (p *Page) Count(kind markup.Kind) int {
	n := 0
	for _, b := range p.Blocks {
		if b.Kind == kind {
			n++
		}
	}
	return n
}

// IsEmpty returns true if the page has no body blocks.
func (p *Page) IsEmpty() bool {
	return len(p.Blocks) == 0
}
