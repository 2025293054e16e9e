package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/scroll/dsl"
	"github.com/ByLCY/scroll/layout"
)

// Importer converts raw input into a layout document.
type Importer interface {
	Import(r io.Reader, opts Options) (*Imported, error)
}

// Options 影响导入方式。
type Options struct {
	// Name 是输入文件名，没有标题的文本以它作为条目标题。
	Name string
	// Self 是聊天记录中"自己"的发送者，其消息右对齐。
	Self string
	// TimeLayout 是聊天标题中时间的格式，默认 2006-01-02 15:04。
	TimeLayout string
}

func (o Options) timeLayout() string {
	if o.TimeLayout == "" {
		return "2006-01-02 15:04"
	}
	return o.TimeLayout
}

func (o Options) title() string {
	base := filepath.Base(o.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Imported 是导入结果；Settings 只有 .scroll 文档会携带。
type Imported struct {
	Document *layout.Document
	Settings dsl.Settings
}

// SupportedExtensions lists file extensions this package can import.
var SupportedExtensions = map[string]bool{
	".scroll":   true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".csv":      true,
	".json":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".scroll":
		return &DSLImporter{}, nil
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".csv":
		return &CSVChatImporter{}, nil
	case ".json":
		return &JSONChatImporter{}, nil
	default:
		return nil, fmt.Errorf("不支持的文件类型: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ImportFile 按扩展名选择导入器读取 path。
func ImportFile(path string, opts Options) (*Imported, error) {
	imp, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开输入文件失败: %w", err)
	}
	defer f.Close()
	if opts.Name == "" {
		opts.Name = path
	}
	out, err := imp.Import(f, opts)
	if err != nil {
		return nil, fmt.Errorf("导入 %s 失败: %w", filepath.Base(path), err)
	}
	return out, nil
}

// docBuilder 把标题与段落按顺序收集成条目；出现在第一个标题之前的段落归入以 fallback 为标题的条目。
type docBuilder struct {
	doc      layout.Document
	current  *layout.Item
	fallback string
}

func newDocBuilder(fallback string) *docBuilder {
	return &docBuilder{fallback: fallback}
}

func (b *docBuilder) heading(text string, align layout.Align) {
	text = strings.Join(cleanLines(text), " ")
	b.doc.Items = append(b.doc.Items, layout.Item{Title: layout.TextBlock{Align: align, Text: text}})
	b.current = &b.doc.Items[len(b.doc.Items)-1]
}

// paragraph 追加正文；文本中的换行拆成多个段落，因为布局层不会解释换行。
func (b *docBuilder) paragraph(text string, align layout.Align) {
	lines := cleanLines(text)
	if len(lines) == 0 {
		return
	}
	if b.current == nil {
		b.heading(b.fallback, layout.AlignLeft)
	}
	for _, ln := range lines {
		b.current.Sections = append(b.current.Sections, layout.TextBlock{Align: align, Text: ln})
	}
}

func (b *docBuilder) document() *layout.Document {
	doc := b.doc
	return &doc
}

// cleanLines 规范化为 NFC，按行拆分，制表符展开为空格，去掉其余控制字符与空行。
func cleanLines(text string) []string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, line)
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// chatMessage 是聊天记录导入器的公共中间形式。
type chatMessage struct {
	Sender string
	Time   time.Time
	Raw    string // 无法解析为时间时原样显示
	Text   string
}

// chatDocument 每条消息一个条目：标题为 "发送者  时间"，自己的消息右对齐。
func chatDocument(msgs []chatMessage, opts Options) *layout.Document {
	b := newDocBuilder(opts.title())
	for _, m := range msgs {
		align := layout.AlignLeft
		if opts.Self != "" && strings.EqualFold(m.Sender, opts.Self) {
			align = layout.AlignRight
		}
		stamp := m.Raw
		if !m.Time.IsZero() {
			stamp = m.Time.Format(opts.timeLayout())
		}
		title := strings.TrimSpace(m.Sender + "  " + stamp)
		b.heading(title, align)
		b.paragraph(m.Text, align)
	}
	doc := b.document()
	doc.Meta.Title = opts.title()
	return doc
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
}

func parseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
