package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ByLCY/scroll/layout"
)

// MarkdownImporter handles Markdown files using goldmark.
// Every heading, whatever its level, starts a new item.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	b := newDocBuilder(opts.title())
	title := ""
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			h := extractText(node, src)
			if node.Level == 1 && title == "" {
				title = h
			}
			b.heading(h, layout.AlignLeft)
		case *ast.List:
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				b.paragraph("• "+extractText(li, src), layout.AlignLeft)
			}
		case *ast.ThematicBreak:
			// 分隔线不输出
		default:
			b.paragraph(extractText(n, src), layout.AlignLeft)
		}
	}

	doc := b.document()
	doc.Meta.Title = title
	if doc.Meta.Title == "" {
		doc.Meta.Title = opts.title()
	}
	return &Imported{Document: doc}, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		if _, ok := n.(*ast.FencedCodeBlock); ok || n.Kind() == ast.KindCodeBlock {
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return strings.TrimRight(buf.String(), "\n")
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() {
				buf.WriteByte('\n')
			} else if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
