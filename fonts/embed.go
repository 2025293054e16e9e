package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/scroll/layout"
)

// DefaultSrc 是未指定字体时使用的内置字体。
const DefaultSrc = "embed:go-regular"

var embedded = map[string][]byte{
	"go-regular":   goregular.TTF,
	"go-bold":      gobold.TTF,
	"go-mono":      gomono.TTF,
	"latin-modern": lmroman10regular.TTF,
}

// PDF 标准 14 字体中可直接使用的 family，键为小写别名。
var coreFamilies = map[string]string{
	"helvetica":    "Helvetica",
	"arial":        "Helvetica",
	"courier":      "Courier",
	"times":        "Times",
	"times-roman":  "Times",
	"symbol":       "Symbol",
	"zapfdingbats": "ZapfDingbats",
}

// Names 返回所有内置字体名称。
func Names() []string {
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回内置字体的字节数据，name 可写为 "embed:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := embedded[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Core 判断 src 是否指向 PDF 标准字体（builtin:Helvetica 等），返回规范化的 family。
func Core(src string) (string, bool) {
	rest, ok := cutBuiltin(src)
	if !ok {
		return "", false
	}
	family, ok := coreFamilies[strings.ToLower(rest)]
	return family, ok
}

// Resolve 读取字体数据。支持 embed: 内置字体与文件路径，相对路径基于 baseDir。
// 标准字体没有字节数据，应先用 Core 判断。
func Resolve(src, baseDir string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("字体 src 为空")
	}
	if strings.HasPrefix(src, "embed:") {
		return Load(src)
	}
	if rest, ok := cutBuiltin(src); ok {
		return nil, fmt.Errorf("标准字体 builtin:%s 没有可嵌入的字体数据", rest)
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	return data, nil
}

// Resource 把 src 描述为布局使用的字体资源。Family 是渲染器注册字体时使用的名称。
func Resource(src string) (layout.FontResource, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = DefaultSrc
	}
	if family, ok := Core(src); ok {
		return layout.FontResource{Name: family, Src: src, Family: family, IsBuiltin: true}, nil
	}
	if _, ok := cutBuiltin(src); ok {
		return layout.FontResource{}, fmt.Errorf("未知的标准字体 %s", src)
	}
	if strings.HasPrefix(src, "embed:") {
		name := strings.ToLower(strings.TrimPrefix(src, "embed:"))
		if _, ok := embedded[name]; !ok {
			return layout.FontResource{}, fmt.Errorf("未知的内置字体 %s", src)
		}
		return layout.FontResource{Name: name, Src: src, Family: name, Fallback: DefaultSrc}, nil
	}
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return layout.FontResource{Name: name, Src: src, Family: name, Fallback: DefaultSrc}, nil
}

func cutBuiltin(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if rest, ok := strings.CutPrefix(src, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
