package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ByLCY/scroll/binding"
	"github.com/ByLCY/scroll/config"
	"github.com/ByLCY/scroll/export"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
	canvasrenderer "github.com/ByLCY/scroll/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/scroll/renderer/fpdf"
	"github.com/ByLCY/scroll/source"
)

type cliOptions struct {
	input     string
	output    string
	config    string
	backend   string
	font      string
	lang      string
	self      string
	data      string
	debugPath string
	logLevel  string
}

func main() {
	var o cliOptions
	flag.StringVar(&o.input, "in", "", "输入文件（.scroll/.txt/.md/.html/.docx/.csv/.json）")
	flag.StringVar(&o.output, "out", "", "PDF 输出路径，- 表示标准输出；默认与输入同名")
	flag.StringVar(&o.config, "config", "scroll.yaml", "YAML 配置文件，不存在时使用默认值")
	flag.StringVar(&o.backend, "backend", "", "渲染后端：fpdf（带书签）或 canvas（不写书签）")
	flag.StringVar(&o.font, "font", "", "字体：embed:NAME、builtin:NAME 或 TTF 路径")
	flag.StringVar(&o.lang, "lang", "", "书签根节点标签的语言，例如 zh-CN、en")
	flag.StringVar(&o.self, "self", "", "聊天记录中自己的发送者名称，其消息右对齐")
	flag.StringVar(&o.data, "data", "", "绑定到文档 ${path} 占位符的 JSON 数据")
	flag.StringVar(&o.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&o.logLevel, "log-level", "info", "日志级别：debug、info、warn、error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "无效的日志级别 %q\n", o.logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if o.input == "" {
		fmt.Fprintln(os.Stderr, "缺少 -in 参数")
		flag.Usage()
		os.Exit(2)
	}
	if o.output == "" {
		o.output = strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".pdf"
	}

	if err := run(o, logger); err != nil {
		logger.Error("生成 PDF 失败", "error", err, "code", renderer.CodeOf(err))
		os.Exit(1)
	}
	if o.output != "-" {
		fmt.Fprintf(os.Stderr, "已生成 PDF：%s\n", o.output)
	}
}

// run 串联导入、配置、绑定、布局与渲染。
func run(o cliOptions, logger *slog.Logger) error {
	cfg, err := config.LoadOrDefault(o.config)
	if err != nil {
		return renderer.Wrap(renderer.CodeInput, "config", err)
	}
	cfg.ApplyEnv()
	if o.self != "" {
		cfg.Self = o.self
	}

	imported, err := source.ImportFile(o.input, source.Options{Self: cfg.Self})
	if err != nil {
		return renderer.Wrap(renderer.CodeInput, "import", err)
	}
	if err := cfg.Apply(imported.Settings); err != nil {
		return renderer.Wrap(renderer.CodeInput, "config", err)
	}
	// 命令行参数优先于文档与配置文件。
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.font != "" {
		cfg.Font = o.font
	}
	if o.lang != "" {
		cfg.Lang = o.lang
	}
	if err := cfg.Validate(); err != nil {
		return renderer.Wrap(renderer.CodeInput, "config", err)
	}

	doc := imported.Document
	if o.data != "" {
		var data any
		if err := json.Unmarshal([]byte(o.data), &data); err != nil {
			return renderer.Errorf(renderer.CodeInput, "data", "解析 data JSON 失败: %w", err)
		}
		doc = binding.Apply(doc, data)
	}
	if doc.Meta.Author == "" {
		doc.Meta.Author = cfg.Meta.Author
	}
	if doc.Meta.Creator == "" {
		doc.Meta.Creator = cfg.Meta.Creator
	}

	opts, err := exportOptions(cfg, o.debugPath)
	if err != nil {
		return renderer.Wrap(renderer.CodeInput, "config", err)
	}
	ex := &export.Exporter{
		Engine: newEngine(cfg.Backend, filepath.Dir(o.input), logger),
		Logger: logger,
	}
	logger.Debug("exporting", "input", o.input, "backend", cfg.Backend, "font", opts.Font.Src, "items", len(doc.Items))

	if o.output == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return renderer.Errorf(renderer.CodeOutput, "open", "标准输出是终端，拒绝写入二进制 PDF")
		}
		_, err = ex.Render(doc, opts, os.Stdout)
		return err
	}
	if dir := filepath.Dir(o.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return renderer.Wrap(renderer.CodeOutput, "mkdir", fmt.Errorf("创建输出目录失败: %w", err))
		}
	}
	_, err = ex.Export(doc, opts, o.output)
	return err
}

func exportOptions(cfg *config.Config, debugPath string) (export.Options, error) {
	font, err := cfg.FontResource()
	if err != nil {
		return export.Options{}, err
	}
	props, err := cfg.Properties()
	if err != nil {
		return export.Options{}, err
	}
	geom, err := cfg.Geometry()
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Font:         font,
		Properties:   props,
		Geometry:     geom,
		OutlineLabel: layout.OutlineLabel(cfg.Lang),
		DebugPath:    debugPath,
	}, nil
}

func newEngine(backend, baseDir string, logger *slog.Logger) renderer.Engine {
	if backend == config.BackendCanvas {
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Logger: logger})
	}
	return fpdfrenderer.NewRendererWithOptions(fpdfrenderer.Options{BaseDir: baseDir, Logger: logger})
}
