// Package config loads scroll's YAML configuration and turns it into layout parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/scroll/dsl"
	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
)

// Backends understood by the CLI.
const (
	BackendFPDF   = "fpdf"
	BackendCanvas = "canvas"
)

// Config is the on-disk configuration. Lengths are strings such as "30", "20pt" or "10mm".
type Config struct {
	Backend string       `yaml:"backend"`
	Font    string       `yaml:"font"`
	Lang    string       `yaml:"lang"`
	Self    string       `yaml:"self,omitempty"`
	Page    PageConfig   `yaml:"page"`
	Layout  LayoutConfig `yaml:"layout"`
	Meta    MetaConfig   `yaml:"meta,omitempty"`
}

// PageConfig 描述纸张。Size 为 A4/LETTER 等名称时忽略 Width/Height。
type PageConfig struct {
	Size         string `yaml:"size"`
	Width        string `yaml:"width,omitempty"`
	Height       string `yaml:"height,omitempty"`
	ContentWidth string `yaml:"content_width,omitempty"`
}

type LayoutConfig struct {
	TitleSize        string       `yaml:"title_size"`
	ContentSize      string       `yaml:"content_size"`
	TitleSpace       string       `yaml:"title_space"`
	LineSpace        string       `yaml:"line_space"`
	SectionSpace     string       `yaml:"section_space"`
	Margin           MarginConfig `yaml:"margin"`
	MinLineChars     int          `yaml:"min_line_chars"`
	PageBreakPerItem bool         `yaml:"page_break_per_item"`
	BlockAlign       bool         `yaml:"block_align"`
}

type MarginConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// MetaConfig 为没有元数据的输入补充作者等信息。
type MetaConfig struct {
	Author  string `yaml:"author,omitempty"`
	Creator string `yaml:"creator,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendFPDF,
		Font:    fonts.DefaultSrc,
		Page:    PageConfig{Size: "A4"},
		Layout: LayoutConfig{
			TitleSize:    "30",
			ContentSize:  "20",
			TitleSpace:   "20",
			LineSpace:    "3",
			SectionSpace: "10",
			Margin:       MarginConfig{Top: "30", Right: "30", Bottom: "30", Left: "30"},
			MinLineChars: 10,
		},
	}
}

// Load loads configuration from a file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置失败: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from SCROLL_BACKEND, SCROLL_FONT and SCROLL_LANG.
func (c *Config) ApplyEnv() {
	c.Backend = envOr("SCROLL_BACKEND", c.Backend)
	c.Font = envOr("SCROLL_FONT", c.Font)
	c.Lang = envOr("SCROLL_LANG", c.Lang)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Apply 把 .scroll 文档 layout 段中的键值写入配置；文档中的值优先于配置文件。
func (c *Config) Apply(settings dsl.Settings) error {
	for _, s := range settings {
		key := strings.ReplaceAll(strings.ToLower(s.Key), "_", "-")
		v := strings.TrimSpace(s.Value)
		l := &c.Layout
		switch key {
		case "title-size":
			l.TitleSize = v
		case "content-size":
			l.ContentSize = v
		case "title-space":
			l.TitleSpace = v
		case "line-space":
			l.LineSpace = v
		case "section-space":
			l.SectionSpace = v
		case "margin":
			l.Margin = MarginConfig{Top: v, Right: v, Bottom: v, Left: v}
		case "margin-top":
			l.Margin.Top = v
		case "margin-right":
			l.Margin.Right = v
		case "margin-bottom":
			l.Margin.Bottom = v
		case "margin-left":
			l.Margin.Left = v
		case "min-line-chars":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s 必须是整数: %q", s.Key, s.Value)
			}
			l.MinLineChars = n
		case "page-break-per-item", "block-align":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s 必须是布尔值: %q", s.Key, s.Value)
			}
			if key == "block-align" {
				l.BlockAlign = b
			} else {
				l.PageBreakPerItem = b
			}
		case "page":
			c.Page = PageConfig{Size: v, ContentWidth: c.Page.ContentWidth}
		case "page-width":
			c.Page.expand()
			c.Page.Width = v
		case "page-height":
			c.Page.expand()
			c.Page.Height = v
		case "content-width":
			c.Page.ContentWidth = v
		case "font":
			c.Font = v
		case "lang":
			c.Lang = v
		case "backend":
			c.Backend = v
		default:
			return fmt.Errorf("未知的 layout 字段 %q", s.Key)
		}
	}
	return nil
}

// Properties converts the layout section to points.
func (c *Config) Properties() (layout.Properties, error) {
	l := c.Layout
	p := layout.Properties{
		MinLineChars:     l.MinLineChars,
		PageBreakPerItem: l.PageBreakPerItem,
		BlockAlign:       l.BlockAlign,
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"title_size", l.TitleSize, &p.TitleSize},
		{"content_size", l.ContentSize, &p.ContentSize},
		{"title_space", l.TitleSpace, &p.TitleSpace},
		{"line_space", l.LineSpace, &p.LineSpace},
		{"section_space", l.SectionSpace, &p.SectionSpace},
		{"margin.top", l.Margin.Top, &p.Margin.Top},
		{"margin.right", l.Margin.Right, &p.Margin.Right},
		{"margin.bottom", l.Margin.Bottom, &p.Margin.Bottom},
		{"margin.left", l.Margin.Left, &p.Margin.Left},
	}
	for _, f := range fields {
		v, err := points(f.raw)
		if err != nil {
			return layout.Properties{}, fmt.Errorf("layout.%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return p, nil
}

// Geometry resolves the page size; content width defaults to 60% of the page width.
func (c *Config) Geometry() (layout.Geometry, error) {
	g := layout.DefaultGeometry()
	pc := c.Page
	switch {
	case pc.Size != "":
		w, h, ok := layout.PageSize(pc.Size)
		if !ok {
			return layout.Geometry{}, fmt.Errorf("未知的纸张 %q", pc.Size)
		}
		g.Width, g.Height = w, h
	case pc.Width != "" || pc.Height != "":
		// 只给出一边时，另一边沿用默认纸张。
		if pc.Width != "" {
			w, err := points(pc.Width)
			if err != nil {
				return layout.Geometry{}, fmt.Errorf("page.width: %w", err)
			}
			g.Width = w
		}
		if pc.Height != "" {
			h, err := points(pc.Height)
			if err != nil {
				return layout.Geometry{}, fmt.Errorf("page.height: %w", err)
			}
			g.Height = h
		}
	}
	g.ContentWidth = g.Width * 0.6
	if pc.ContentWidth != "" {
		v, err := contentWidth(pc.ContentWidth, g.Width)
		if err != nil {
			return layout.Geometry{}, fmt.Errorf("page.content_width: %w", err)
		}
		g.ContentWidth = v
	}
	return g, nil
}

// expand 把命名纸张展开为显式宽高，之后可以只覆盖其中一边。
// 未知纸张保持原样，由 Geometry 报错。
func (p *PageConfig) expand() {
	if p.Size == "" {
		return
	}
	w, h, ok := layout.PageSize(p.Size)
	if !ok {
		return
	}
	p.Size = ""
	p.Width = strconv.FormatFloat(w, 'f', -1, 64) + "pt"
	p.Height = strconv.FormatFloat(h, 'f', -1, 64) + "pt"
}

// contentWidth 接受长度或页宽百分比（"60%"）。
func contentWidth(raw string, pageWidth float64) (float64, error) {
	if pct, ok := strings.CutSuffix(strings.TrimSpace(raw), "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析百分比 %q", raw)
		}
		return pageWidth * f / 100, nil
	}
	return points(raw)
}

// FontResource resolves the configured font source.
func (c *Config) FontResource() (layout.FontResource, error) {
	return fonts.Resource(c.Font)
}

// Validate checks that the configuration describes a usable layout.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFPDF, BackendCanvas:
	default:
		return fmt.Errorf("未知的渲染后端 %q（可选 fpdf、canvas）", c.Backend)
	}
	if _, err := c.FontResource(); err != nil {
		return err
	}
	p, err := c.Properties()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	g, err := c.Geometry()
	if err != nil {
		return err
	}
	return g.Validate(p)
}

func points(raw string) (float64, error) {
	l, err := layout.ParseLength(raw)
	if err != nil {
		return 0, err
	}
	return l.ToPT(), nil
}
