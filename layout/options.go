package layout

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// FontSizeRatio 调和测量端与输出端两种字号体系的差异，内容宽度预算按此放大。
const FontSizeRatio = 1.247

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Properties 是一次渲染内不变的排版参数。
type Properties struct {
	TitleSize    float64 // 标题字号
	ContentSize  float64 // 正文字号
	TitleSpace   float64 // 标题下方间距
	LineSpace    float64 // 行间距
	SectionSpace float64 // 段落间距
	Margin       Margin
	// MinLineChars 是换行时每行至少取的字符数。
	MinLineChars int
	// PageBreakPerItem 为 true 时每个 Item 从新页面开始。
	PageBreakPerItem bool
	// BlockAlign 为 true 时段落各行按最宽行整体对齐，而不是逐行对齐。
	BlockAlign bool
}

// DefaultProperties 返回默认排版参数。
func DefaultProperties() Properties {
	return Properties{
		TitleSize:    30,
		ContentSize:  20,
		TitleSpace:   20,
		LineSpace:    3,
		SectionSpace: 10,
		Margin:       Margin{Top: 30, Right: 30, Bottom: 30, Left: 30},
		MinLineChars: 10,
	}
}

// Validate 检查排版参数本身是否自洽。
func (p Properties) Validate() error {
	if p.TitleSize <= 0 || p.ContentSize <= 0 {
		return fmt.Errorf("layout: 字号必须为正数 (title=%g content=%g)", p.TitleSize, p.ContentSize)
	}
	if p.TitleSpace < 0 || p.LineSpace < 0 || p.SectionSpace < 0 {
		return fmt.Errorf("layout: 间距不能为负数")
	}
	m := p.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("layout: 边距不能为负数")
	}
	if p.MinLineChars < 1 {
		return fmt.Errorf("layout: 每行最少字符数必须 >= 1，实际 %d", p.MinLineChars)
	}
	return nil
}

// Geometry 描述页面尺寸与配置的内容宽度。
type Geometry struct {
	Width        float64
	Height       float64
	ContentWidth float64
}

// A4 at 72 dpi.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:        595,
		Height:       842,
		ContentWidth: 595 * 0.6,
	}
}

// Budget 返回一行允许的最大测量宽度。
func (g Geometry) Budget() float64 {
	return math.Min(g.ContentWidth, g.Width) * FontSizeRatio
}

// Validate 检查页面与排版参数组合后是否还留有可排版区域。
func (g Geometry) Validate(p Properties) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("layout: 页面尺寸必须为正数 (%gx%g)", g.Width, g.Height)
	}
	if g.ContentWidth <= 0 {
		return fmt.Errorf("layout: 内容宽度必须为正数，实际 %g", g.ContentWidth)
	}
	if p.Margin.Left+p.Margin.Right >= g.Width {
		return fmt.Errorf("layout: 左右边距之和 %g 超出页宽 %g", p.Margin.Left+p.Margin.Right, g.Width)
	}
	// 新页面的第一行基线必须落在下边界之内，否则翻页永远无法结束。
	maxSize := math.Max(p.TitleSize, p.ContentSize)
	if p.Margin.Top+maxSize >= g.Height-p.Margin.Bottom {
		return fmt.Errorf("layout: 上下边距 %g/%g 与字号 %g 超出页高 %g", p.Margin.Top, p.Margin.Bottom, maxSize, g.Height)
	}
	return nil
}

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Measurer     Measurer
	Font         FontResource
	Properties   Properties
	Geometry     Geometry
	OutlineLabel string // 为空时使用 DefaultOutlineLabel
	Logger       *slog.Logger
}

// Measurer 按给定字体与字号测量文本宽度（pt）。
// 同一 (font, size, text) 必须返回相同结果；空字符串返回 0。
type Measurer interface {
	TextWidth(font FontResource, size float64, text string) (float64, error)
}

// MeasureFunc 把普通函数适配为 Measurer，主要用于测试。
type MeasureFunc func(font FontResource, size float64, text string) (float64, error)

func (f MeasureFunc) TextWidth(font FontResource, size float64, text string) (float64, error) {
	return f(font, size, text)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
