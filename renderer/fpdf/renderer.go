package fpdfrenderer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

const defaultCreator = "scroll"

// Renderer writes layout results with codeberg.org/go-pdf/fpdf and measures
// text with the same font programs, so layout and output agree on widths.
type Renderer struct {
	baseDir  string
	compress bool
	created  time.Time
	log      *slog.Logger

	mu       sync.Mutex
	fontData map[string][]byte
	scratch  map[string]*measureDoc
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Engine   = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the fpdf renderer.
type Options struct {
	// BaseDir 用于解析相对路径的字体文件。
	BaseDir string
	// DisableCompression 关闭内容流压缩，便于调试。
	DisableCompression bool
	// CreationDate 为零值时由 fpdf 使用当前时间。
	CreationDate time.Time
	Logger       *slog.Logger
}

// measureDoc 是只用于测量的空白文档，每种字体一个。
type measureDoc struct {
	pdf    *fpdf.Fpdf
	family string
	encode func(string) string
}

// NewRenderer creates a renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer {
	return NewRendererWithOptions(Options{BaseDir: baseDir})
}

// NewRendererWithOptions creates a renderer with explicit options.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		baseDir:  opts.BaseDir,
		compress: !opts.DisableCompression,
		created:  opts.CreationDate,
		log:      log,
		fontData: map[string][]byte{},
		scratch:  map[string]*measureDoc{},
	}
}

// TextWidth 实现 layout.Measurer，返回 pt。
func (r *Renderer) TextWidth(font layout.FontResource, size float64, text string) (w float64, err error) {
	if text == "" {
		return 0, nil
	}
	defer func() {
		if p := recover(); p != nil {
			w, err = 0, renderer.Errorf(renderer.CodeEngine, "measure", "fpdf panic: %v", p)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.measureDocLocked(font)
	if err != nil {
		return 0, err
	}
	m.pdf.SetFont(m.family, "", size)
	w = m.pdf.GetStringWidth(m.encode(text))
	if m.pdf.Err() {
		return 0, renderer.Wrap(renderer.CodeEngine, "measure", m.pdf.Error())
	}
	return w, nil
}

func (r *Renderer) measureDocLocked(font layout.FontResource) (*measureDoc, error) {
	key := fontCacheKey(font)
	if m, ok := r.scratch[key]; ok {
		return m, nil
	}
	pdf := newDocument(fpdf.SizeType{Wd: 595, Ht: 842})
	family, encode, err := r.registerFontLocked(pdf, font)
	if err != nil {
		return nil, err
	}
	m := &measureDoc{pdf: pdf, family: family, encode: encode}
	r.scratch[key] = m
	return m, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) (data []byte, err error) {
	if result == nil {
		return nil, renderer.Errorf(renderer.CodeInput, "render", "渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, renderer.Errorf(renderer.CodeInput, "render", "缺少可渲染的页面")
	}
	defer func() {
		if p := recover(); p != nil {
			data, err = nil, renderer.Errorf(renderer.CodeEngine, "render", "fpdf panic: %v", p)
		}
	}()

	first := result.Pages[0]
	pdf := newDocument(fpdf.SizeType{Wd: first.Width, Ht: first.Height})
	pdf.SetCompression(r.compress)
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
	}
	applyMeta(pdf, result.Meta)

	family, encode, err := r.registerFont(pdf, result.Font)
	if err != nil {
		return nil, err
	}

	entries := result.Outline.Entries
	next := 0
	for i, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		size := 12.0
		if len(page.Runs) > 0 {
			size = page.Runs[0].FontSize
		}
		pdf.SetFont(family, "", size)

		// 书签绑定到当前页，必须在该页创建之后登记；根节点挂在第一页。
		if i == 0 {
			pdf.Bookmark(encode(result.Outline.Label), 0, 0)
		}
		for next < len(entries) && entries[next].Page == i {
			bm := entries[next]
			pdf.Bookmark(encode(bm.Label), 1, bm.Top)
			next++
		}

		for _, run := range page.Runs {
			if run.FontSize != size {
				size = run.FontSize
				pdf.SetFont(family, "", size)
			}
			pdf.Text(run.X, page.Height-run.Y, encode(run.Content))
		}
		if pdf.Err() {
			return nil, renderer.Wrap(renderer.CodeEngine, fmt.Sprintf("page %d", i+1), pdf.Error())
		}
	}
	if next < len(entries) {
		return nil, renderer.Errorf(renderer.CodeInput, "outline", "书签 %q 指向不存在的第 %d 页", entries[next].Label, entries[next].Page+1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, renderer.Wrap(renderer.CodeEngine, "output", err)
	}
	r.log.Debug("pdf rendered", "pages", len(result.Pages), "bookmarks", len(entries), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func newDocument(size fpdf.SizeType) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           size,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}
	if meta.Subject != "" {
		pdf.SetSubject(meta.Subject, true)
	}
	if len(meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}
	creator := meta.Creator
	if creator == "" {
		creator = defaultCreator
	}
	pdf.SetCreator(creator, true)
}

func (r *Renderer) registerFont(pdf *fpdf.Fpdf, font layout.FontResource) (string, func(string) string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerFontLocked(pdf, font)
}

// registerFontLocked 在 pdf 上注册字体，返回 family 与文本编码函数。
// 标准字体使用 cp1252，其余字体按 UTF-8 嵌入。
func (r *Renderer) registerFontLocked(pdf *fpdf.Fpdf, font layout.FontResource) (string, func(string) string, error) {
	if family, ok := coreFamily(font); ok {
		return family, winAnsi, nil
	}

	data, err := r.fontBytesLocked(font)
	if err != nil {
		return "", nil, err
	}
	family := font.Family
	if family == "" {
		family = font.Name
	}
	if family == "" {
		family = "body"
	}
	pdf.AddUTF8FontFromBytes(family, "", data)
	if pdf.Err() {
		return "", nil, renderer.Wrap(renderer.CodeEngine, "font", fmt.Errorf("注册字体 %s 失败: %w", font.Src, pdf.Error()))
	}
	return family, identity, nil
}

func (r *Renderer) fontBytesLocked(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = fonts.DefaultSrc
	}
	if data, ok := r.fontData[src]; ok {
		return data, nil
	}
	data, err := fonts.Resolve(src, r.baseDir)
	if err != nil && font.Fallback != "" && font.Fallback != src {
		r.log.Warn("font unavailable, using fallback", "src", src, "fallback", font.Fallback, "err", err)
		data, err = fonts.Resolve(font.Fallback, r.baseDir)
	}
	if err != nil {
		return nil, renderer.Wrap(renderer.CodeEngine, "font", err)
	}
	r.fontData[src] = data
	return data, nil
}

func coreFamily(font layout.FontResource) (string, bool) {
	if family, ok := fonts.Core(font.Src); ok {
		return family, true
	}
	if font.IsBuiltin && font.Family != "" {
		return font.Family, true
	}
	return "", false
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Family)
}

// winAnsi 把文本编码为标准字体使用的 cp1252，无法表示的字符替换为 '?'。
func winAnsi(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

func identity(s string) string { return s }
