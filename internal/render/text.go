package render

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/markup"
)

// ANSI styling used when Options.Color is set.
const (
	ansiBold      = "\x1b[1m"
	ansiBoldOff   = "\x1b[22m"
	ansiItalic    = "\x1b[3m"
	ansiItalicOff = "\x1b[23m"
	ansiDim       = "\x1b[2m"
	ansiDimOff    = "\x1b[22m"
)

const (
	quotePrefix = "  │ "
	tipLabel    = "✦ Tip"
	dividerRule = "───"
)

var upper = cases.Upper(language.Und)

// Text writes a terminal rendering of the page.
type Text struct{}

func (Text) Name() string        { return "text" }
func (Text) Description() string { return "Terminal reading view (wrapped, optional ANSI styling)" }

func (Text) Render(w io.Writer, page *book.Page, opts Options) error {
	bw := bufio.NewWriter(w)
	st := styler{color: opts.Color}

	title := page.Header.Title
	if page.Header.Icon != "" {
		title = page.Header.Icon + "  " + title
	}
	bw.WriteString(st.bold(title) + "\n")
	if page.Header.Subtitle != "" {
		bw.WriteString(st.italic(page.Header.Subtitle) + "\n")
	}
	bw.WriteString(strings.Repeat("─", max(runewidth.StringWidth(title), 3)) + "\n")

	for _, b := range page.Blocks {
		bw.WriteString("\n")
		switch b.Kind {
		case markup.KindHeading:
			bw.WriteString(st.dim(upper.String(b.Content)) + "\n")
		case markup.KindParagraph:
			writeLines(bw, wrap(b.Spans, opts.Width, ""), st, "")
		case markup.KindQuote:
			plain := []markup.Span{{Text: b.Content, Emphasis: markup.EmphasisItalic}}
			writeLines(bw, wrap(plain, opts.Width, quotePrefix), st, quotePrefix)
			if b.Author != nil {
				bw.WriteString(quotePrefix + "— " + *b.Author + "\n")
			}
		case markup.KindTip:
			bw.WriteString("  ┌ " + st.bold(tipLabel) + "\n")
			writeLines(bw, wrap(b.Spans, opts.Width, quotePrefix), st, quotePrefix)
			bw.WriteString("  └\n")
		case markup.KindDivider:
			bw.WriteString("  " + dividerRule + "\n")
		}
	}

	return bw.Flush()
}

type styler struct {
	color bool
}

func (s styler) bold(t string) string {
	if !s.color {
		return t
	}
	return ansiBold + t + ansiBoldOff
}

func (s styler) italic(t string) string {
	if !s.color {
		return t
	}
	return ansiItalic + t + ansiItalicOff
}

func (s styler) dim(t string) string {
	if !s.color {
		return t
	}
	return ansiDim + t + ansiDimOff
}

func (s styler) span(sp markup.Span) string {
	switch sp.Emphasis {
	case markup.EmphasisBold:
		return s.bold(sp.Text)
	case markup.EmphasisItalic:
		return s.italic(sp.Text)
	default:
		return sp.Text
	}
}

// word is a run of non-space text; it may mix emphasis, as in un**do**ne.
type word []markup.Span

func (w word) width() int {
	n := 0
	for _, s := range w {
		n += runewidth.StringWidth(s.Text)
	}
	return n
}

// splitWords breaks spans on white space, keeping each fragment's emphasis.
func splitWords(spans []markup.Span) []word {
	var (
		out []word
		cur word
	)
	for _, s := range spans {
		text := s.Text
		for text != "" {
			i := strings.IndexFunc(text, unicode.IsSpace)
			switch {
			case i == 0:
				if len(cur) > 0 {
					out = append(out, cur)
					cur = nil
				}
				text = strings.TrimLeftFunc(text, unicode.IsSpace)
			case i < 0:
				cur = append(cur, markup.Span{Text: text, Emphasis: s.Emphasis})
				text = ""
			default:
				cur = append(cur, markup.Span{Text: text[:i], Emphasis: s.Emphasis})
				text = text[i:]
			}
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// wrap fills lines greedily up to width columns including prefix. A word
// longer than the line is placed on its own line. width 0 disables wrapping.
func wrap(spans []markup.Span, width int, prefix string) [][]word {
	words := splitWords(spans)
	if len(words) == 0 {
		return nil
	}
	avail := width - runewidth.StringWidth(prefix)
	if width <= 0 || avail < 1 {
		return [][]word{words}
	}

	var (
		lines [][]word
		line  []word
		used  int
	)
	for _, w := range words {
		ww := w.width()
		if len(line) > 0 && used+1+ww > avail {
			lines = append(lines, line)
			line, used = nil, 0
		}
		if len(line) > 0 {
			used++
		}
		line = append(line, w)
		used += ww
	}
	return append(lines, line)
}

func writeLines(bw *bufio.Writer, lines [][]word, st styler, prefix string) {
	for _, line := range lines {
		bw.WriteString(prefix)
		for i, w := range line {
			if i > 0 {
				bw.WriteByte(' ')
			}
			for _, s := range w {
				bw.WriteString(st.span(s))
			}
		}
		bw.WriteByte('\n')
	}
}
