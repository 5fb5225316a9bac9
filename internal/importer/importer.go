// Package importer converts CommonMark documents into chapter markup so
// existing notes can be brought into the book.
package importer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/zenbook-app/zenbook/internal/markup"
)

// tipPrefix marks a block quote written as a tip by the markdown renderer.
const tipPrefix = "**Tip:**"

// Result is a converted document.
type Result struct {
	Title    string
	Subtitle string
	Icon     string
	Body     string
}

// Converter turns Markdown into chapter markup.
type Converter struct {
	gm goldmark.Markdown
}

// New creates a converter using goldmark's CommonMark parser.
func New() *Converter {
	return &Converter{gm: goldmark.New()}
}

// Convert parses src and returns the chapter markup.
//
// The first level-1 heading becomes the title (a leading emoji becomes the
// icon) and an emphasised paragraph directly below it the subtitle. Other
// headings become section headings, block quotes pull quotes (a final
// "— name" line is the attribution), code blocks tips, and list items
// separate paragraphs.
func (c *Converter) Convert(src []byte) (Result, error) {
	doc := c.gm.Parser().Parse(text.NewReader(src))
	if doc == nil {
		return Result{}, fmt.Errorf("failed to parse markdown")
	}

	var (
		res       Result
		blocks    []string
		afterHead bool
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		wasAfterHead := afterHead
		afterHead = false

		switch node := n.(type) {
		case *ast.Heading:
			line := inlineText(node, src)
			if node.Level == 1 && res.Title == "" {
				res.Icon, res.Title = splitIcon(line)
				afterHead = true
				continue
			}
			blocks = append(blocks, markup.HeadingMarker+line)

		case *ast.Paragraph:
			if wasAfterHead && res.Subtitle == "" && isEmphasisOnly(node, src) {
				res.Subtitle = strings.Trim(inlineText(node, src), "*")
				continue
			}
			if line := inlineText(node, src); line != "" {
				blocks = append(blocks, line)
			}

		case *ast.Blockquote:
			if b := quoteBlock(node, src); b != "" {
				blocks = append(blocks, b)
			}

		case *ast.ThematicBreak:
			blocks = append(blocks, markup.DividerDashes)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks = append(blocks, codeTip(node, src))

		case *ast.List:
			blocks = append(blocks, listItems(node, src)...)
		}
	}

	if len(blocks) > 0 {
		res.Body = strings.Join(blocks, "\n\n") + "\n"
	}
	return res, nil
}

// inlineText flattens inline children onto one line, keeping emphasis as
// chapter markup.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeInline(&sb, n, src)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func writeInline(sb *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			sb.WriteString(unescape(string(node.Segment.Value(src))))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeSpan:
			for t := node.FirstChild(); t != nil; t = t.NextSibling() {
				if txt, ok := t.(*ast.Text); ok {
					sb.Write(txt.Segment.Value(src))
				}
			}
		case *ast.Emphasis:
			marker := strings.Repeat("*", min(node.Level, 2))
			sb.WriteString(marker)
			writeInline(sb, node, src)
			sb.WriteString(marker)
		case *ast.AutoLink:
			sb.Write(node.URL(src))
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				sb.Write(seg.Value(src))
			}
		default:
			writeInline(sb, node, src)
		}
	}
}

// isEmphasisOnly reports whether the paragraph is a single emphasised run.
func isEmphasisOnly(p *ast.Paragraph, src []byte) bool {
	found := false
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Emphasis:
			if found {
				return false
			}
			found = true
		case *ast.Text:
			if strings.TrimSpace(string(node.Segment.Value(src))) != "" {
				return false
			}
		default:
			return false
		}
	}
	return found
}

// quoteBlock renders a block quote as a pull quote or, when it starts with
// the tip label, as a tip.
func quoteBlock(q *ast.Blockquote, src []byte) string {
	var paras []string
	for c := q.FirstChild(); c != nil; c = c.NextSibling() {
		if line := inlineText(c, src); line != "" {
			paras = append(paras, line)
		}
	}
	if len(paras) == 0 {
		return ""
	}

	joined := strings.Join(paras, " ")
	if strings.HasPrefix(joined, tipPrefix) {
		return markup.TipOpenMarker + "\n" + strings.TrimSpace(joined[len(tipPrefix):]) + "\n" + markup.TipCloseMarker
	}

	// Quote text is shown verbatim, so use the raw lines.
	var lines []string
	for c := q.FirstChild(); c != nil; c = c.NextSibling() {
		if l, ok := c.(*ast.List); ok {
			// "> - name" parses as a list
			for item := l.FirstChild(); item != nil; item = item.NextSibling() {
				if line := inlineText(item, src); line != "" {
					lines = append(lines, "- "+line)
				}
			}
			continue
		}
		segs := c.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			if line := strings.TrimSpace(unescape(string(seg.Value(src)))); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}

	if len(lines) > 1 {
		if author, ok := attribution(lines[len(lines)-1]); ok {
			return markup.QuoteMarker + strings.Join(lines[:len(lines)-1], " ") + markup.AuthorSeparator + author
		}
	}
	return markup.QuoteMarker + strings.Join(lines, " ")
}

// attribution recognises "— name", "-- name" and "- name".
func attribution(line string) (string, bool) {
	for _, dash := range []string{"—", "--", "- "} {
		if strings.HasPrefix(line, dash) {
			if name := strings.TrimSpace(line[len(dash):]); name != "" {
				return name, true
			}
		}
	}
	return "", false
}

func codeTip(n ast.Node, src []byte) string {
	var sb strings.Builder
	sb.WriteString(markup.TipOpenMarker + "\n")
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		sb.WriteString(strings.TrimRight(string(seg.Value(src)), "\r\n"))
		sb.WriteByte('\n')
	}
	sb.WriteString(markup.TipCloseMarker)
	return sb.String()
}

// listItems flattens a list, nested lists included, into one paragraph per
// item.
func listItems(l *ast.List, src []byte) []string {
	var out []string
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := "• "
		if l.IsOrdered() {
			bullet = fmt.Sprintf("%d. ", num)
			num++
		}

		var parts []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, listItems(sub, src)...)
				continue
			}
			if line := inlineText(c, src); line != "" {
				parts = append(parts, line)
			}
		}
		if len(parts) > 0 {
			out = append(out, bullet+strings.Join(parts, " "))
		}
		out = append(out, nested...)
	}
	return out
}

// unescape drops the backslash of a CommonMark escaped punctuation mark.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(asciiPunct, s[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// splitIcon separates a leading emoji from a heading.
func splitIcon(heading string) (icon, title string) {
	first, rest, found := strings.Cut(heading, " ")
	if !found || !isIcon(first) {
		return "", heading
	}
	return first, strings.TrimSpace(rest)
}

func isIcon(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	hasSymbol := false
	for _, r := range s {
		switch {
		case unicode.IsSymbol(r):
			hasSymbol = true
		case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Cf, r), unicode.Is(unicode.Me, r):
			// variation selectors, joiners
		default:
			return false
		}
	}
	return hasSymbol
}
