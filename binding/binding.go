package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/scroll/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Apply 对文档中所有标题、段落与元信息做 ${path} 替换，原文档不会被修改。
func Apply(doc *layout.Document, data any) *layout.Document {
	if doc == nil {
		return nil
	}
	out := &layout.Document{
		Meta: layout.DocumentMeta{
			Title:   Interpolate(doc.Meta.Title, data),
			Author:  Interpolate(doc.Meta.Author, data),
			Subject: Interpolate(doc.Meta.Subject, data),
			Creator: Interpolate(doc.Meta.Creator, data),
		},
		Items: make([]layout.Item, len(doc.Items)),
	}
	for _, kw := range doc.Meta.Keywords {
		out.Meta.Keywords = append(out.Meta.Keywords, Interpolate(kw, data))
	}
	for i, it := range doc.Items {
		item := layout.Item{Title: bindBlock(it.Title, data)}
		for _, sec := range it.Sections {
			item.Sections = append(item.Sections, bindBlock(sec, data))
		}
		out.Items[i] = item
	}
	return out
}

func bindBlock(b layout.TextBlock, data any) layout.TextBlock {
	return layout.TextBlock{Align: b.Align, Text: Interpolate(b.Text, data)}
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 解码后的数据中取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// format 让 JSON 数字按整数输出，避免 1e+06 之类的写法。
func format(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
