package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/scroll/dsl"
	"github.com/ByLCY/scroll/layout"
)

// DSLImporter handles .scroll documents.
type DSLImporter struct{}

func (p *DSLImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	ast, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	doc, settings, err := dsl.Convert(ast)
	if err != nil {
		return nil, err
	}
	return &Imported{Document: doc, Settings: settings}, nil
}

// TextImporter handles plain text. Blank lines separate paragraphs and the lines
// of one paragraph are joined. A single short line followed by more text starts a new item.
type TextImporter struct{}

const maxTextHeading = 80

func (p *TextImporter) Import(r io.Reader, opts Options) (*Imported, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	blocks := splitBlocks(text)

	b := newDocBuilder(opts.title())
	for i, block := range blocks {
		lines := cleanLines(block)
		if len(lines) == 0 {
			continue
		}
		isHeading := len(lines) == 1 &&
			len([]rune(lines[0])) <= maxTextHeading &&
			i+1 < len(blocks) &&
			!strings.HasSuffix(lines[0], ".")
		if isHeading {
			b.heading(lines[0], layout.AlignLeft)
			continue
		}
		b.paragraph(strings.Join(lines, " "), layout.AlignLeft)
	}
	doc := b.document()
	doc.Meta.Title = opts.title()
	return &Imported{Document: doc}, nil
}

func splitBlocks(text string) []string {
	var blocks []string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}
