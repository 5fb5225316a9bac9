package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func author(s string) *string { return &s }

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Block
	}{
		{
			name: "empty body",
			body: "",
			want: []Block{},
		},
		{
			name: "only blank lines",
			body: "\n   \n\t\n",
			want: []Block{},
		},
		{
			name: "heading",
			body: "## Hello",
			want: []Block{{Kind: KindHeading, Content: "Hello"}},
		},
		{
			name: "heading with surrounding space",
			body: "   ##    Breathe   ",
			want: []Block{{Kind: KindHeading, Content: "Breathe"}},
		},
		{
			name: "quote with author",
			body: "> Be water | Bruce Lee",
			want: []Block{{Kind: KindQuote, Content: "Be water", Author: author("Bruce Lee")}},
		},
		{
			name: "quote without author",
			body: "> Just a quote",
			want: []Block{{Kind: KindQuote, Content: "Just a quote"}},
		},
		{
			name: "quote splits on last separator",
			body: "> either | or | Someone",
			want: []Block{{Kind: KindQuote, Content: "either | or", Author: author("Someone")}},
		},
		{
			name: "quote with bare pipe keeps pipe",
			body: "> a|b",
			want: []Block{{Kind: KindQuote, Content: "a|b"}},
		},
		{
			name: "paragraphs merge until blank line",
			body: "Line one\nLine two\n\nLine three",
			want: []Block{
				{Kind: KindParagraph, Content: "Line one Line two"},
				{Kind: KindParagraph, Content: "Line three"},
			},
		},
		{
			name: "paragraph lines are trimmed",
			body: "  first  \n\tsecond\r\n",
			want: []Block{{Kind: KindParagraph, Content: "first second"}},
		},
		{
			name: "tip",
			body: "[tip]\nNote A\nNote B\n[/tip]",
			want: []Block{{Kind: KindTip, Content: "Note A Note B"}},
		},
		{
			name: "tip markers are case insensitive",
			body: "[TIP]\nNote\n\n  more  \n[/Tip]",
			want: []Block{{Kind: KindTip, Content: "Note more"}},
		},
		{
			name: "empty tip",
			body: "[tip]\n[/tip]",
			want: []Block{{Kind: KindTip, Content: ""}},
		},
		{
			name: "tip keeps markers literal",
			body: "[tip]\n## not a heading\n---\n[/tip]",
			want: []Block{{Kind: KindTip, Content: "## not a heading ---"}},
		},
		{
			name: "reopened tip resets buffer",
			body: "[tip]\nold\n[tip]\nnew\n[/tip]",
			want: []Block{{Kind: KindTip, Content: "new"}},
		},
		{
			name: "unterminated tip is dropped",
			body: "Intro\n\n[tip]\nlost\nforever",
			want: []Block{{Kind: KindParagraph, Content: "Intro"}},
		},
		{
			name: "stray close marker is text",
			body: "[/tip]",
			want: []Block{{Kind: KindParagraph, Content: "[/tip]"}},
		},
		{
			name: "dividers",
			body: "---\n===",
			want: []Block{{Kind: KindDivider}, {Kind: KindDivider}},
		},
		{
			name: "divider must be exact",
			body: "----\n=== x",
			want: []Block{{Kind: KindParagraph, Content: "---- === x"}},
		},
		{
			name: "markers are case and space sensitive",
			body: "##Hello\n>quote",
			want: []Block{{Kind: KindParagraph, Content: "##Hello >quote"}},
		},
		{
			name: "paragraph stops at block start",
			body: "text\n## Head\nmore\n> q\nend\n---\nlast\n[Tip]\ninside\n[/tip]",
			want: []Block{
				{Kind: KindParagraph, Content: "text"},
				{Kind: KindHeading, Content: "Head"},
				{Kind: KindParagraph, Content: "more"},
				{Kind: KindQuote, Content: "q"},
				{Kind: KindParagraph, Content: "end"},
				{Kind: KindDivider},
				{Kind: KindParagraph, Content: "last"},
				{Kind: KindTip, Content: "inside"},
			},
		},
		{
			name: "full chapter",
			body: `## Section

First paragraph with **bold**
continued here.

> Quote text | Author Name

[tip]
A highlighted
insight
[/tip]

Use *italic* too.

---`,
			want: []Block{
				{Kind: KindHeading, Content: "Section"},
				{Kind: KindParagraph, Content: "First paragraph with **bold** continued here."},
				{Kind: KindQuote, Content: "Quote text", Author: author("Author Name")},
				{Kind: KindTip, Content: "A highlighted insight"},
				{Kind: KindParagraph, Content: "Use *italic* too."},
				{Kind: KindDivider},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBlocks(tc.body)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseBlocks(%q) mismatch (-want +got):\n%s", tc.body, diff)
			}
		})
	}
}

func TestParseBlocks_Deterministic(t *testing.T) {
	body := "## A\n\none\ntwo\n> q | w\n[tip]\nx\n[/tip]\n---"
	first := ParseBlocks(body)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, ParseBlocks(body)); diff != "" {
			t.Fatalf("reparse differs (-first +again):\n%s", diff)
		}
	}
}

func TestParseBlocks_CoversEveryLine(t *testing.T) {
	body := "alpha\nbeta\n\n## gamma\n> delta | eps\nzeta\n\n[tip]\neta\n\ntheta\n[/tip]\niota"
	var words []string
	for _, b := range ParseBlocks(body) {
		words = append(words, strings.Fields(b.Content)...)
		if b.Author != nil {
			words = append(words, *b.Author)
		}
	}
	want := []string{"alpha", "beta", "gamma", "delta", "eps", "zeta", "eta", "theta", "iota"}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("content coverage mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_Spans(t *testing.T) {
	tests := []struct {
		block Block
		want  []Span
	}{
		{Block{Kind: KindParagraph, Content: "a **b**"}, []Span{{"a ", EmphasisNone}, {"b", EmphasisBold}}},
		{Block{Kind: KindTip, Content: "*c*"}, []Span{{"c", EmphasisItalic}}},
		{Block{Kind: KindHeading, Content: "**h**"}, nil},
		{Block{Kind: KindQuote, Content: "*q*"}, nil},
		{Block{Kind: KindDivider}, nil},
	}

	for _, tc := range tests {
		t.Run(string(tc.block.Kind), func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.block.Spans()); diff != "" {
				t.Errorf("Spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBlock_AuthorName(t *testing.T) {
	if got := (Block{Kind: KindQuote}).AuthorName(); got != "" {
		t.Errorf("expected empty author, got %q", got)
	}
	if got := (Block{Kind: KindQuote, Author: author("Rumi")}).AuthorName(); got != "Rumi" {
		t.Errorf("expected 'Rumi', got %q", got)
	}
}

func TestParseBlocks_WhiteSpace(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Block
	}{
		{"next line kept", "\u0085", []Block{{Kind: KindParagraph, Content: "\u0085"}}},
		{"next line inside", " a\u0085 ", []Block{{Kind: KindParagraph, Content: "a\u0085"}}},
		{"byte order mark", "\ufefftext", []Block{{Kind: KindParagraph, Content: "text"}}},
		{"no-break and ideographic space", "\u00a0\u3000", []Block{}},
		{"line separator", "x\u2028", []Block{{Kind: KindParagraph, Content: "x"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ParseBlocks(tc.body)); diff != "" {
				t.Errorf("ParseBlocks(%q) mismatch (-want +got):\n%s", tc.body, diff)
			}
		})
	}
}
