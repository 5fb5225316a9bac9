package render

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/markup"
)

// HTML writes an <article> fragment. Text is escaped by the serializer.
type HTML struct{}

func (HTML) Name() string        { return "html" }
func (HTML) Description() string { return "HTML <article> fragment" }

func (HTML) Render(w io.Writer, page *book.Page, _ Options) error {
	if err := html.Render(w, Article(page)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Article builds the node tree for a page.
func Article(page *book.Page) *html.Node {
	header := element(atom.Header, "")
	if page.Header.Icon != "" {
		header.AppendChild(element(atom.Div, "icon", text(page.Header.Icon)))
	}
	header.AppendChild(element(atom.H1, "", text(page.Header.Title)))
	if page.Header.Subtitle != "" {
		header.AppendChild(element(atom.P, "subtitle", text(page.Header.Subtitle)))
	}

	article := element(atom.Article, "chapter", header)
	for _, b := range page.Blocks {
		article.AppendChild(blockNode(b))
	}
	return article
}

func blockNode(b book.Block) *html.Node {
	switch b.Kind {
	case markup.KindHeading:
		return element(atom.H2, "", text(b.Content))
	case markup.KindQuote:
		quote := element(atom.Blockquote, "", element(atom.P, "", text(b.Content)))
		if b.Author != nil {
			quote.AppendChild(element(atom.Footer, "", text("— "+*b.Author)))
		}
		return quote
	case markup.KindTip:
		return element(atom.Aside, "tip", element(atom.P, "", spanNodes(b.Spans)...))
	case markup.KindDivider:
		return element(atom.Hr, "")
	default:
		return element(atom.P, "", spanNodes(b.Spans)...)
	}
}

func spanNodes(spans []markup.Span) []*html.Node {
	nodes := make([]*html.Node, 0, len(spans))
	for _, s := range spans {
		switch s.Emphasis {
		case markup.EmphasisBold:
			nodes = append(nodes, element(atom.Strong, "", text(s.Text)))
		case markup.EmphasisItalic:
			nodes = append(nodes, element(atom.Em, "", text(s.Text)))
		default:
			nodes = append(nodes, text(s.Text))
		}
	}
	return nodes
}

func element(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
