package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// The output is a flat PDF: canvas has no outline API, so bookmarks are dropped.
type Renderer struct {
	baseDir string
	log     *slog.Logger

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Engine   = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string][]byte // built-in fonts accessible via builtin:<name>
	Logger  *slog.Logger
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Renderer{
		baseDir:      opts.BaseDir,
		log:          log,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, data := range opts.Fonts {
		if name != "" && len(data) > 0 {
			r.fontBlobs[name] = data
		}
	}
	return r
}

// TextWidth 实现 layout.Measurer。canvas 以 mm 为单位，这里换算回 pt。
func (r *Renderer) TextWidth(font layout.FontResource, size float64, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	face, err := r.fontFace(font, size)
	if err != nil {
		return 0, renderer.Wrap(renderer.CodeEngine, "measure", err)
	}
	return toPt(face.TextWidth(text)), nil
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
			data, err = nil, renderer.Errorf(renderer.CodeEngine, "render", "canvas panic: %v", p)
		}
	}()

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		w, h := toMm(page.Width), toMm(page.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		// 默认坐标系原点在左下角，与 TextRun.Y 自页面底部量起一致。
		if err := r.drawPage(ctx, page, result.Font); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if len(result.Outline.Entries) > 0 {
		r.log.Warn("canvas backend writes no outline, bookmarks dropped; use -backend fpdf to keep them", "bookmarks", len(result.Outline.Entries))
	}

	if err := writer.Close(); err != nil {
		return nil, renderer.Wrap(renderer.CodeEngine, "output", fmt.Errorf("写入 PDF 失败: %w", err))
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	creator := meta.Creator
	if creator == "" {
		creator = "scroll"
	}
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, font layout.FontResource) error {
	faces := map[float64]*canvas.FontFace{}
	for _, run := range page.Runs {
		face, ok := faces[run.FontSize]
		if !ok {
			var err error
			face, err = r.fontFace(font, run.FontSize)
			if err != nil {
				return renderer.Wrap(renderer.CodeEngine, "font", err)
			}
			faces[run.FontSize] = face
		}
		ctx.DrawText(toMm(run.X), toMm(run.Y), canvas.NewTextLine(face, run.Content, canvas.Left))
	}
	return nil
}

// fontFace 按 pt 字号创建字体面。
func (r *Renderer) fontFace(font layout.FontResource, sizePt float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, color.Black, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)
	if err := r.loadFontIntoFamily(family, font); err != nil {
		fallback, fbErr := r.fallback(font)
		if fbErr != nil {
			return nil, err
		}
		r.log.Warn("font unavailable, using fallback", "src", font.Src, "err", err)
		r.fontFamilies[key] = fallback
		return fallback, nil
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, canvas.FontRegular)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = fonts.DefaultSrc
	}
	if _, ok := fonts.Core(src); ok {
		// canvas 不内置 PDF 标准字体，走回退字体。
		return nil, fmt.Errorf("canvas 不支持标准字体 %s", src)
	}
	if strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 builtin:%s", name)
	}
	return fonts.Resolve(src, r.baseDir)
}

func (r *Renderer) fallback(font layout.FontResource) (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	src := font.Fallback
	if src == "" {
		src = fonts.DefaultSrc
	}
	data, err := fonts.Resolve(src, r.baseDir)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("scroll-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Family)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
