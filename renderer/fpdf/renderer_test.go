package fpdfrenderer

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	pdfread "github.com/ledongthuc/pdf"

	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

var helvetica = layout.FontResource{Name: "Helvetica", Src: "builtin:Helvetica", Family: "Helvetica", IsBuiltin: true}

func render(t *testing.T, r *Renderer, doc *layout.Document, font layout.FontResource) []byte {
	t.Helper()
	res, err := layout.Build(doc, layout.BuildOptions{Measurer: r, Font: font})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("输出不是 PDF")
	}
	return data
}

func open(t *testing.T, data []byte) *pdfread.Reader {
	t.Helper()
	rd, err := pdfread.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("读取生成的 PDF 失败: %v", err)
	}
	return rd
}

func TestRenderEmptyDocument(t *testing.T) {
	r := NewRenderer("")
	rd := open(t, render(t, r, &layout.Document{}, helvetica))
	if n := rd.NumPage(); n != 1 {
		t.Fatalf("空文档应有 1 页，实际 %d", n)
	}
	root := rd.Outline()
	if len(root.Child) != 1 || root.Child[0].Title != layout.DefaultOutlineLabel {
		t.Fatalf("应只有一个书签根节点，实际 %+v", root.Child)
	}
	if len(root.Child[0].Child) != 0 {
		t.Fatalf("空文档书签根节点不应有子节点，实际 %d", len(root.Child[0].Child))
	}
}

func TestRenderTextAndOutline(t *testing.T) {
	r := NewRendererWithOptions(Options{DisableCompression: true})
	doc := &layout.Document{
		Meta: layout.DocumentMeta{Title: "Chat export", Author: "tester"},
		Items: []layout.Item{
			{Title: layout.Center("Report"), Sections: []layout.TextBlock{layout.Left("Quarterly numbers look fine")}},
			{Title: layout.Right("Appendix"), Sections: []layout.TextBlock{layout.Right("See attached tables")}},
		},
	}
	data := render(t, r, doc, helvetica)
	rd := open(t, data)
	text, err := rd.Page(1).GetPlainText(nil)
	if err != nil {
		t.Fatalf("提取文本失败: %v", err)
	}
	for _, want := range []string{"Report", "Appendix", "See attached tables"} {
		if !strings.Contains(text, want) {
			t.Fatalf("第一页文本缺少 %q: %q", want, text)
		}
	}
	root := rd.Outline()
	if len(root.Child) != 1 {
		t.Fatalf("应有一个书签根节点，实际 %d", len(root.Child))
	}
	var titles []string
	for _, c := range root.Child[0].Child {
		titles = append(titles, c.Title)
	}
	if strings.Join(titles, "|") != "Report|Appendix" {
		t.Fatalf("书签顺序不符: %v", titles)
	}
	if got := rd.Trailer().Key("Info").Key("Title").Text(); got != "Chat export" {
		t.Fatalf("元信息标题应为 Chat export，实际 %q", got)
	}
}

func TestRenderMultiPageBookmarks(t *testing.T) {
	r := NewRenderer("")
	para := strings.Repeat("lorem ipsum dolor sit amet ", 60)
	var doc layout.Document
	for _, title := range []string{"one", "two", "three"} {
		doc.Items = append(doc.Items, layout.Item{
			Title:    layout.Left(title),
			Sections: []layout.TextBlock{layout.Left(para), layout.Left(para)},
		})
	}
	res, err := layout.Build(&doc, layout.BuildOptions{Measurer: r, Font: helvetica})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if len(res.Pages) < 3 {
		t.Fatalf("长文档应跨多页，实际 %d 页", len(res.Pages))
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	rd := open(t, data)
	if rd.NumPage() != len(res.Pages) {
		t.Fatalf("PDF 页数 %d 与布局页数 %d 不一致", rd.NumPage(), len(res.Pages))
	}
	if n := len(rd.Outline().Child[0].Child); n != 3 {
		t.Fatalf("应有 3 个书签，实际 %d", n)
	}
	for _, bm := range res.Outline.Entries {
		text, err := rd.Page(bm.Page + 1).GetPlainText(nil)
		if err != nil {
			t.Fatalf("提取第 %d 页文本失败: %v", bm.Page+1, err)
		}
		if !strings.Contains(text, bm.Label) {
			t.Fatalf("书签 %q 指向的第 %d 页没有标题", bm.Label, bm.Page+1)
		}
	}
}

func TestMeasureCoreFont(t *testing.T) {
	r := NewRenderer("")
	// Helvetica: H=722 e=556 l=222 l=222 o=556，单位 1/1000 em。
	w, err := r.TextWidth(helvetica, 20, "Hello")
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if want := 2278.0 * 20 / 1000; math.Abs(w-want) > 1e-6 {
		t.Fatalf("Hello@20pt 宽度期望 %g，实际 %g", want, w)
	}
	again, _ := r.TextWidth(helvetica, 20, "Hello")
	if again != w {
		t.Fatalf("同一输入两次测量结果不同: %g vs %g", w, again)
	}
	if z, _ := r.TextWidth(helvetica, 20, ""); z != 0 {
		t.Fatalf("空字符串宽度应为 0，实际 %g", z)
	}
}

func TestMeasureEmbeddedFont(t *testing.T) {
	r := NewRenderer("")
	font := layout.FontResource{Name: "go-regular", Src: "embed:go-regular", Family: "go-regular"}
	a, err := r.TextWidth(font, 12, "a")
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	ab, _ := r.TextWidth(font, 12, "ab")
	big, _ := r.TextWidth(font, 24, "ab")
	if a <= 0 || ab <= a {
		t.Fatalf("宽度应随字符增加: a=%g ab=%g", a, ab)
	}
	if math.Abs(big-2*ab) > 1e-6 {
		t.Fatalf("宽度应与字号成正比: 12pt=%g 24pt=%g", ab, big)
	}
	render(t, r, &layout.Document{Items: []layout.Item{{Title: layout.Left("go fonts")}}}, font)
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(t.TempDir())
	if _, err := r.Render(nil); renderer.CodeOf(err) != renderer.CodeInput {
		t.Fatalf("空结果期望 INPUT 错误，实际 %v", err)
	}

	missing := layout.FontResource{Name: "nope", Src: filepath.Join("fonts", "nope.ttf")}
	if _, err := r.TextWidth(missing, 12, "x"); renderer.CodeOf(err) != renderer.CodeEngine {
		t.Fatalf("字体缺失期望 ENGINE 错误，实际 %v", err)
	}
	withFallback := missing
	withFallback.Fallback = "embed:go-regular"
	if _, err := r.TextWidth(withFallback, 12, "x"); err != nil {
		t.Fatalf("有回退字体时不应报错: %v", err)
	}

	res := &layout.Result{
		Pages:   []layout.Page{{Width: 595, Height: 842}},
		Outline: layout.Outline{Label: "root", Open: true, Entries: []layout.Bookmark{{Label: "lost", Page: 3}}},
		Font:    helvetica,
	}
	if _, err := r.Render(res); renderer.CodeOf(err) != renderer.CodeInput {
		t.Fatalf("书签页码越界期望 INPUT 错误，实际 %v", err)
	}
}

func TestWinAnsi(t *testing.T) {
	if got := winAnsi("café €5"); got != "caf\xe9 \x805" {
		t.Fatalf("cp1252 编码不符: %q", got)
	}
	if got := winAnsi("中文"); got != "??" {
		t.Fatalf("无法编码的字符应替换为 ?，实际 %q", got)
	}
}
