package canvasrenderer

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	pdfread "github.com/ledongthuc/pdf"

	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

var goRegular = layout.FontResource{Name: "go-regular", Src: "embed:go-regular", Family: "go-regular"}

func TestTextWidthInPoints(t *testing.T) {
	r := NewRenderer(".")
	a, err := r.TextWidth(goRegular, 12, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.TextWidth(goRegular, 24, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a <= 0 {
		t.Fatalf("expected positive width, got %g", a)
	}
	// 宽度按 pt 返回：5 个拉丁字母在 12pt 下应在 10pt 到 60pt 之间。
	if a < 10 || a > 60 {
		t.Fatalf("width %g does not look like points", a)
	}
	if diff := math.Abs(b - 2*a); diff > 1e-6 {
		t.Fatalf("width should scale with size: 12pt=%g 24pt=%g", a, b)
	}
	if z, _ := r.TextWidth(goRegular, 12, ""); z != 0 {
		t.Fatalf("empty string should measure 0, got %g", z)
	}
}

func TestCoreFontFallsBack(t *testing.T) {
	r := NewRenderer(".")
	core := layout.FontResource{Name: "Helvetica", Src: "builtin:Helvetica", Family: "Helvetica", IsBuiltin: true}
	w, err := r.TextWidth(core, 12, "hello")
	if err != nil {
		t.Fatalf("core font should fall back to embedded font: %v", err)
	}
	want, _ := r.TextWidth(goRegular, 12, "hello")
	if math.Abs(w-want) > 1e-6 {
		t.Fatalf("fallback width %g differs from go-regular %g", w, want)
	}
}

func TestInjectedFont(t *testing.T) {
	data, err := fonts.Load("go-mono")
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	r := NewRendererWithOptions(Options{Fonts: map[string][]byte{"mono": data}})
	mono := layout.FontResource{Name: "mono", Src: "builtin:mono"}
	i, err := r.TextWidth(mono, 10, "iiii")
	if err != nil {
		t.Fatalf("measure injected font: %v", err)
	}
	m, _ := r.TextWidth(mono, 10, "mmmm")
	if math.Abs(i-m) > 1e-6 {
		t.Fatalf("monospace font should give equal widths: %g vs %g", i, m)
	}
}

func TestRenderFlatPDF(t *testing.T) {
	r := NewRenderer(".")
	doc := &layout.Document{
		Meta: layout.DocumentMeta{Title: "canvas"},
		Items: []layout.Item{
			{Title: layout.Center("First"), Sections: []layout.TextBlock{layout.Left(strings.Repeat("canvas text ", 300))}},
			{Title: layout.Left("Second")},
		},
	}
	res, err := layout.Build(doc, layout.BuildOptions{Measurer: r, Font: goRegular})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rd, err := pdfread.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if rd.NumPage() != len(res.Pages) {
		t.Fatalf("expected %d pages, got %d", len(res.Pages), rd.NumPage())
	}
}

func TestRenderWarnsAboutDroppedBookmarks(t *testing.T) {
	var logs bytes.Buffer
	r := NewRendererWithOptions(Options{BaseDir: ".", Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	doc := &layout.Document{Items: []layout.Item{{Title: layout.Left("only")}}}
	res, err := layout.Build(doc, layout.BuildOptions{Measurer: r, Font: goRegular})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := r.Render(res); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "bookmarks=1") {
		t.Fatalf("expected a WARN about dropped bookmarks, got %q", out)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(".")
	if _, err := r.Render(nil); renderer.CodeOf(err) != renderer.CodeInput {
		t.Fatalf("expected INPUT error, got %v", err)
	}
	if _, err := r.Render(&layout.Result{}); renderer.CodeOf(err) != renderer.CodeInput {
		t.Fatalf("expected INPUT error for zero pages, got %v", err)
	}
}
