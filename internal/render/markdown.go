package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/markup"
)

// Markdown writes CommonMark.
type Markdown struct{}

func (Markdown) Name() string        { return "markdown" }
func (Markdown) Description() string { return "CommonMark document" }

func (Markdown) Render(w io.Writer, page *book.Page, _ Options) error {
	bw := bufio.NewWriter(w)

	title := escapeHeading(page.Header.Title)
	if page.Header.Icon != "" {
		title = page.Header.Icon + " " + title
	}
	fmt.Fprintf(bw, "# %s\n\n", title)
	if page.Header.Subtitle != "" {
		fmt.Fprintf(bw, "_%s_\n\n", escapeInline(page.Header.Subtitle))
	}

	for _, b := range page.Blocks {
		switch b.Kind {
		case markup.KindHeading:
			fmt.Fprintf(bw, "## %s\n\n", escapeHeading(b.Content))
		case markup.KindParagraph:
			fmt.Fprintf(bw, "%s\n\n", escapeLeading(markdownSpans(b.Spans)))
		case markup.KindQuote:
			fmt.Fprintf(bw, "> %s\n", escapeLeading(escapeInline(b.Content)))
			if b.Author != nil {
				fmt.Fprintf(bw, ">\n> — %s\n", escapeInline(*b.Author))
			}
			bw.WriteString("\n")
		case markup.KindTip:
			fmt.Fprintf(bw, "> **Tip:** %s\n\n", markdownSpans(b.Spans))
		case markup.KindDivider:
			bw.WriteString("---\n\n")
		}
	}

	return bw.Flush()
}

func markdownSpans(spans []markup.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Emphasis {
		case markup.EmphasisBold:
			sb.WriteString("**" + escapeInline(s.Text) + "**")
		case markup.EmphasisItalic:
			sb.WriteString("*" + escapeInline(s.Text) + "*")
		default:
			sb.WriteString(escapeInline(s.Text))
		}
	}
	return sb.String()
}

// inlineEscaper escapes characters CommonMark would read as inline markup.
var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

// escapeLeading escapes a line start CommonMark would take for a block
// marker: headings, quotes, list bullets, setext underlines, fences and
// ordered list numbers.
func escapeLeading(line string) string {
	if line == "" {
		return line
	}
	switch line[0] {
	case '#', '>', '-', '+', '=', '~':
		return `\` + line
	}

	digits := 0
	for digits < len(line) && digits < 10 && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		return line[:digits] + `\` + line[digits:]
	}
	return line
}

// escapeHeading escapes heading text, including a trailing run of #
// that would otherwise close the heading.
func escapeHeading(s string) string {
	s = escapeInline(s)
	if strings.HasSuffix(s, "#") {
		s = strings.TrimSuffix(s, "#") + `\#`
	}
	return s
}
