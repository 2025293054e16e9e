package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/scroll/layout"
)

// HTMLImporter handles HTML files. h1-h6 start items; p, li, td, blockquote
// and pre become paragraphs. The align attribute and text-align style are honoured.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newDocBuilder(opts.title())
	var walk func(n *html.Node, inherited layout.Align)
	walk = func(n *html.Node, inherited layout.Align) {
		align := inherited
		if n.Type == html.ElementNode {
			if a, ok := elementAlign(n); ok {
				align = a
			}
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				b.heading(textContent(n), align)
				return
			case atom.Script, atom.Style, atom.Nav, atom.Head, atom.Template:
				return
			case atom.P, atom.Li, atom.Td, atom.Th, atom.Blockquote, atom.Pre, atom.Figcaption:
				b.paragraph(textContent(n), align)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, align)
		}
	}
	walk(root, layout.AlignLeft)

	doc := b.document()
	doc.Meta.Title = findTitle(root)
	if doc.Meta.Title == "" {
		doc.Meta.Title = opts.title()
	}
	return &Imported{Document: doc}, nil
}

// elementAlign reads align="..." or style="text-align: ...".
func elementAlign(n *html.Node) (layout.Align, bool) {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "align":
			if a, ok := layout.ParseAlign(attr.Val); ok && attr.Val != "" {
				return a, true
			}
		case "style":
			for _, decl := range strings.Split(attr.Val, ";") {
				name, value, ok := strings.Cut(decl, ":")
				if !ok || !strings.EqualFold(strings.TrimSpace(name), "text-align") {
					continue
				}
				if a, ok := layout.ParseAlign(value); ok && strings.TrimSpace(value) != "" {
					return a, true
				}
			}
		}
	}
	return layout.AlignLeft, false
}

// textContent 收集文本节点；<br> 与 <pre> 中的换行保留为换行。
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	if n.DataAtom == atom.Pre {
		return strings.Trim(buf.String(), "\n")
	}
	// 普通元素中的源码换行只是空白。
	lines := strings.Split(buf.String(), "\n")
	for i, ln := range lines {
		lines[i] = strings.Join(strings.Fields(ln), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
