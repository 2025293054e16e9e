package layout

import (
	"fmt"
	"log/slog"
)

// Build 按顺序排版文档中的每个 Item，生成页面、文本与书签。
//
// 每个 Item：标题单行输出，随后登记书签，再逐段换行、逐行落位。
// Item 之间默认不强制分页。
func Build(doc *Document, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}
	props := opts.Properties
	if props == (Properties{}) {
		props = DefaultProperties()
	}
	geom := opts.Geometry
	if geom == (Geometry{}) {
		geom = DefaultGeometry()
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}
	if err := geom.Validate(props); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}

	b := &builder{
		props:     props,
		geom:      geom,
		budget:    geom.Budget(),
		measurer:  opts.Measurer,
		font:      opts.Font,
		log:       log,
		collector: newPageCollector(geom, props.Margin, log),
		outline:   newOutline(opts.OutlineLabel),
	}
	for i := range doc.Items {
		if err := b.item(&doc.Items[i]); err != nil {
			return nil, fmt.Errorf("layout: 第 %d 个条目: %w", i+1, err)
		}
	}
	b.collector.finish(props.TitleSize)

	res := &Result{
		Pages:   b.collector.pages(),
		Outline: b.outline.outline,
		Font:    opts.Font,
		Meta:    doc.Meta,
		Stats:   b.stats,
	}
	log.Debug("layout built",
		"items", res.Stats.Items,
		"pages", len(res.Pages),
		"lines", res.Stats.Lines,
		"skipped", res.Stats.SkippedLines)
	return res, nil
}

type builder struct {
	props     Properties
	geom      Geometry
	budget    float64
	measurer  Measurer
	font      FontResource
	log       *slog.Logger
	collector *pageCollector
	outline   *outlineBuilder
	stats     Stats
}

func (b *builder) item(it *Item) error {
	pc := b.collector
	p := b.props
	switch {
	case pc.state == stateNoPage:
		pc.openPage(p.TitleSize)
	case p.PageBreakPerItem:
		pc.freshPage(p.TitleSize)
	default:
		pc.setFontSize(p.TitleSize)
	}

	titleWidth := 0.0
	if it.Title.Align != AlignLeft {
		w, err := b.measure(p.TitleSize, it.Title.Text)
		if err != nil {
			return err
		}
		titleWidth = w
	}
	if err := b.emit(it.Title.Text, it.Title.Align, titleWidth); err != nil {
		return err
	}
	// 书签必须在段落排版之前登记：段落可能翻出新页。
	b.outline.register(it.Title.Text, pc.anchor(), pc.cursor-p.TitleSize)
	b.stats.Items++

	pc.advance(p.TitleSpace, p.ContentSize)
	for i := range it.Sections {
		if err := b.paragraph(&it.Sections[i]); err != nil {
			return fmt.Errorf("第 %d 段: %w", i+1, err)
		}
		pc.advance(p.SectionSpace, p.ContentSize)
	}
	return nil
}

func (b *builder) paragraph(block *TextBlock) error {
	size := b.props.ContentSize
	lines, err := Wrap(block.Text, b.budget, b.props.MinLineChars, func(s string) (float64, error) {
		return b.measure(size, s)
	})
	if err != nil {
		return err
	}

	blockWidth := 0.0
	if b.props.BlockAlign {
		for _, ln := range lines {
			if ln.Width > blockWidth {
				blockWidth = ln.Width
			}
		}
	}

	for i, ln := range lines {
		if i > 0 {
			b.collector.advance(b.props.LineSpace, size)
		}
		width := ln.Width
		if b.props.BlockAlign {
			width = blockWidth
		}
		if err := b.emit(ln.Text, block.Align, width); err != nil {
			return err
		}
	}
	return nil
}

// emit 解析横坐标并输出一行；含控制字符的行不输出，但游标照常前进。
func (b *builder) emit(text string, align Align, width float64) error {
	if text == "" {
		return nil
	}
	if !printable(text) {
		b.stats.SkippedLines++
		b.log.Warn("line skipped: contains control characters",
			"page", b.collector.pageIndex()+1,
			"text", text)
		return nil
	}
	m := b.props.Margin
	x := ResolveX(align, width, b.geom.Width, m.Left, m.Right)
	if err := b.collector.place(text, x, width); err != nil {
		return err
	}
	b.stats.Lines++
	return nil
}

func (b *builder) measure(size float64, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	w, err := b.measurer.TextWidth(b.font, size, text)
	if err != nil {
		return 0, fmt.Errorf("测量文本宽度失败: %w", err)
	}
	return w, nil
}
