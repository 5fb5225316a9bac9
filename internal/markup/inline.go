package markup

import (
	"regexp"
	"strings"
)

// Emphasis is the inline style of a span.
type Emphasis string

const (
	EmphasisNone   Emphasis = "none"
	EmphasisBold   Emphasis = "bold"
	EmphasisItalic Emphasis = "italic"
)

// Span is a run of text with a single emphasis. Spans never nest.
type Span struct {
	Text     string   `json:"text"`
	Emphasis Emphasis `json:"emphasis"`
}

// inlinePattern tries the double-marker alternative first at every position,
// so **x** is bold and never two empty italics. Emphasis stops at any line
// terminator, not only \n.
var inlinePattern = regexp.MustCompile(`\*\*([^\n\r\x{2028}\x{2029}]+?)\*\*|\*([^\n\r\x{2028}\x{2029}]+?)\*`)

// ParseInline splits text into plain, bold and italic spans. Unmatched
// markers stay literal. Text without markers yields a single plain span.
func ParseInline(text string) []Span {
	matches := inlinePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Span{{Text: text, Emphasis: EmphasisNone}}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, Span{Text: text[last:m[0]], Emphasis: EmphasisNone})
		}
		if m[2] >= 0 {
			spans = append(spans, Span{Text: text[m[2]:m[3]], Emphasis: EmphasisBold})
		} else {
			spans = append(spans, Span{Text: text[m[4]:m[5]], Emphasis: EmphasisItalic})
		}
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:], Emphasis: EmphasisNone})
	}
	return spans
}

// PlainText concatenates the text of spans, dropping emphasis.
func PlainText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
