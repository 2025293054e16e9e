package layout

import "strings"

// 该文件定义输入文档模型与布局结果，供布局计算、渲染与调试 JSON 共用。
// 所有长度单位均为 pt。

// Align 表示整行文本的水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the DSL spelling of the alignment.
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// MarshalText 让调试 JSON 输出可读的对齐方式。
func (a Align) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAlign 规范化对齐方式，支持 start/end 别名；无法识别时返回 false。
func ParseAlign(v string) (Align, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return AlignLeft, true
	case "center", "centre", "middle":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	default:
		return AlignLeft, false
	}
}

// TextBlock 是不可变的（对齐方式, 原始文本）对。文本中的换行不会被解释。
type TextBlock struct {
	Align Align  `json:"align"`
	Text  string `json:"text"`
}

// Left/Center/Right 是构造 TextBlock 的便捷函数。
func Left(text string) TextBlock   { return TextBlock{Align: AlignLeft, Text: text} }
func Center(text string) TextBlock { return TextBlock{Align: AlignCenter, Text: text} }
func Right(text string) TextBlock  { return TextBlock{Align: AlignRight, Text: text} }

// Item 对应一个书签：一个标题加若干段落。
type Item struct {
	Title    TextBlock   `json:"title"`
	Sections []TextBlock `json:"sections"`
}

// Document 是按顺序排列的 Item 集合，顺序即渲染与书签顺序。
type Document struct {
	Meta  DocumentMeta `json:"meta"`
	Items []Item       `json:"items"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// FontResource 描述字体资源，src 可以是文件路径、内置 embed 路径或 builtin:* 形式。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Family    string `json:"family"`    // 渲染器使用的 Family 名称
	IsBuiltin bool   `json:"isBuiltin"` // 是否为 PDF 标准字体
	Fallback  string `json:"fallback"`
}

// Line 是换行器产出的一行文本及其测量宽度。
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// Result 保存布局后的页面、书签与资源信息。
type Result struct {
	Pages   []Page       `json:"pages"`
	Outline Outline      `json:"outline"`
	Font    FontResource `json:"font"`
	Meta    DocumentMeta `json:"meta"`
	Stats   Stats        `json:"stats"`
}

// Page 记录页面尺寸与可以直接输出的文本。
type Page struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Runs   []TextRun `json:"runs"`
}

// TextRun 是一次 textOut：Y 为基线，自页面底部量起。
type TextRun struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"` // 左对齐的标题不测量，为 0
	FontSize float64 `json:"fontSize"`
}

// Outline 是书签树：一个根节点，每个 Item 一个子节点。
type Outline struct {
	Label   string     `json:"label"`
	Open    bool       `json:"open"`
	Entries []Bookmark `json:"entries"`
}

// Bookmark 指向标题所在页面（从 0 开始）及标题顶部距页面顶部的偏移。
type Bookmark struct {
	Label string  `json:"label"`
	Page  int     `json:"page"`
	Top   float64 `json:"top"`
}

// Stats 汇总一次布局。
type Stats struct {
	Items        int `json:"items"`
	Lines        int `json:"lines"`
	SkippedLines int `json:"skippedLines"`
}
