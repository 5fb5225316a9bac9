// Package markup implements the chapter markup language: a line-oriented block
// grammar (headings, pull quotes, tips, dividers, paragraphs) and inline
// bold/italic emphasis.
//
// Both ParseBlocks and ParseInline are total: every input string yields a
// well-defined result, so partially typed markup can be previewed safely.
package markup

import (
	"strings"
	"unicode"
)

// Markers recognised by the block grammar.
const (
	HeadingMarker   = "## "
	QuoteMarker     = "> "
	AuthorSeparator = " | "
	TipOpenMarker   = "[tip]"
	TipCloseMarker  = "[/tip]"
	DividerDashes   = "---"
	DividerEquals   = "==="
)

// Kind identifies the type of a block.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindQuote     Kind = "quote"
	KindDivider   Kind = "divider"
	KindTip       Kind = "tip"
)

// Block is one structural unit of chapter content.
type Block struct {
	Kind    Kind    `json:"kind"`
	Content string  `json:"content"`
	Author  *string `json:"author,omitempty"` // quote attribution, nil when absent
}

// HasInline reports whether the block content carries inline emphasis.
// Only paragraphs and tips are run through the inline formatter.
func (b Block) HasInline() bool {
	return b.Kind == KindParagraph || b.Kind == KindTip
}

// Spans returns the inline spans of the block content, or nil for kinds
// that are displayed verbatim.
func (b Block) Spans() []Span {
	if !b.HasInline() {
		return nil
	}
	return ParseInline(b.Content)
}

// AuthorName returns the quote attribution or an empty string.
func (b Block) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return *b.Author
}

// ParseBlocks splits a chapter body into blocks in source order.
//
// The body is processed line by line. A [tip] line (any case) opens a tip
// that collects the following non-blank lines until [/tip]; the collected
// lines are joined with single spaces. A tip left open at the end of the
// body is dropped. Outside a tip, blank lines separate paragraphs and
// consecutive plain lines merge into one paragraph.
func ParseBlocks(body string) []Block {
	lines := strings.Split(body, "\n")
	blocks := make([]Block, 0)

	var (
		inTip bool
		tip   []string
	)

	for i := 0; i < len(lines); i++ {
		line := trim(lines[i])

		if strings.EqualFold(line, TipOpenMarker) {
			inTip = true
			tip = tip[:0]
			continue
		}
		if inTip {
			if strings.EqualFold(line, TipCloseMarker) {
				inTip = false
				blocks = append(blocks, Block{
					Kind:    KindTip,
					Content: trim(strings.Join(tip, " ")),
				})
				tip = tip[:0]
				continue
			}
			if line != "" {
				tip = append(tip, line)
			}
			continue
		}

		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, HeadingMarker):
			blocks = append(blocks, Block{
				Kind:    KindHeading,
				Content: trim(line[len(HeadingMarker):]),
			})
		case strings.HasPrefix(line, QuoteMarker):
			blocks = append(blocks, parseQuote(line[len(QuoteMarker):]))
		case isDivider(line):
			blocks = append(blocks, Block{Kind: KindDivider})
		default:
			para := []string{line}
			for i+1 < len(lines) {
				next := trim(lines[i+1])
				if next == "" || startsBlock(next) {
					break
				}
				para = append(para, next)
				i++
			}
			blocks = append(blocks, Block{
				Kind:    KindParagraph,
				Content: strings.Join(para, " "),
			})
		}
	}

	return blocks
}

// parseQuote splits a quote remainder on the last author separator so the
// quoted text itself may contain pipes.
func parseQuote(rest string) Block {
	idx := strings.LastIndex(rest, AuthorSeparator)
	if idx < 0 {
		return Block{Kind: KindQuote, Content: trim(rest)}
	}
	author := trim(rest[idx+len(AuthorSeparator):])
	return Block{
		Kind:    KindQuote,
		Content: trim(rest[:idx]),
		Author:  &author,
	}
}

func isDivider(line string) bool {
	return line == DividerDashes || line == DividerEquals
}

// startsBlock reports whether a trimmed line begins a block of its own and
// therefore ends paragraph accumulation.
func startsBlock(line string) bool {
	return strings.HasPrefix(line, HeadingMarker) ||
		strings.HasPrefix(line, QuoteMarker) ||
		isDivider(line) ||
		strings.EqualFold(line, TipOpenMarker)
}

// trim strips surrounding white space, including a byte order mark left
// behind by editors at the start of a body.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace matches the white space and line terminators of ECMAScript, which
// leave out U+0085 and add U+FEFF.
func isSpace(r rune) bool {
	return (unicode.IsSpace(r) && r != '\u0085') || r == '\uFEFF'
}
