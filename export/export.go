// Package export 串联布局、渲染与写盘。
package export

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

// Exporter turns documents into PDF files with one engine.
// The engine measures during layout and draws during rendering, so both sides use the same font metrics.
type Exporter struct {
	Engine renderer.Engine
	Logger *slog.Logger
}

// Options 是一次导出的排版参数。
type Options struct {
	Font         layout.FontResource
	Properties   layout.Properties
	Geometry     layout.Geometry
	OutlineLabel string
	// DebugPath 非空时额外输出布局调试 JSON。
	DebugPath string
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// Export 在排版之前先确认 path 可写，成功后原子地替换目标文件。
// 返回的错误都带有 renderer.Code。
func (e *Exporter) Export(doc *layout.Document, opts Options, path string) (*layout.Result, error) {
	log := e.logger().With("output", path)
	if err := renderer.CheckWritable(path); err != nil {
		log.Error("output not writable", "error", err)
		return nil, err
	}
	res, data, err := e.render(doc, opts, log)
	if err != nil {
		return nil, err
	}
	if err := renderer.WriteFile(path, data); err != nil {
		log.Error("write failed", "error", err)
		return nil, err
	}
	log.Info("pdf written", "pages", len(res.Pages), "bytes", len(data))
	return res, nil
}

// Render 与 Export 相同，但把 PDF 写入 w，例如标准输出。
func (e *Exporter) Render(doc *layout.Document, opts Options, w io.Writer) (*layout.Result, error) {
	res, data, err := e.render(doc, opts, e.logger())
	if err != nil {
		return nil, err
	}
	if err := renderer.WriteTo(w, data); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Exporter) render(doc *layout.Document, opts Options, log *slog.Logger) (*layout.Result, []byte, error) {
	if e.Engine == nil {
		return nil, nil, renderer.Errorf(renderer.CodeEngine, "export", "未配置渲染引擎")
	}
	if err := validate(doc, opts); err != nil {
		err = renderer.Wrap(renderer.CodeInput, "layout", err)
		log.Error("invalid input", "error", err)
		return nil, nil, err
	}
	start := time.Now()
	res, err := layout.Build(doc, layout.BuildOptions{
		Measurer:     e.Engine,
		Font:         opts.Font,
		Properties:   opts.Properties,
		Geometry:     opts.Geometry,
		OutlineLabel: opts.OutlineLabel,
		Logger:       log,
	})
	if err != nil {
		// 输入已校验，剩下的只可能是测量后端的失败。
		err = renderer.Wrap(renderer.CodeEngine, "layout", err)
		log.Error("layout failed", "error", err)
		return nil, nil, err
	}
	log.Debug("layout done",
		"items", res.Stats.Items,
		"lines", res.Stats.Lines,
		"skipped_lines", res.Stats.SkippedLines,
		"pages", len(res.Pages),
		"elapsed", time.Since(start))

	if opts.DebugPath != "" {
		if err := layout.WriteDebugJSON(res, opts.DebugPath); err != nil {
			return nil, nil, renderer.Wrap(renderer.CodeOutput, "debug", fmt.Errorf("输出调试 JSON 失败: %w", err))
		}
	}

	data, err := e.Engine.Render(res)
	if err != nil {
		err = renderer.Wrap(renderer.CodeEngine, "render", err)
		log.Error("render failed", "error", err)
		return nil, nil, err
	}
	return res, data, nil
}

// validate 按 layout.Build 的默认值规则检查参数，使输入问题带 INPUT 码。
func validate(doc *layout.Document, opts Options) error {
	if doc == nil {
		return fmt.Errorf("文档为空")
	}
	p := opts.Properties
	if p == (layout.Properties{}) {
		p = layout.DefaultProperties()
	}
	g := opts.Geometry
	if g == (layout.Geometry{}) {
		g = layout.DefaultGeometry()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return g.Validate(p)
}
