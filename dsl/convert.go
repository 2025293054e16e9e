package dsl

import (
	"fmt"
	"strings"

	"github.com/ByLCY/scroll/layout"
)

// Settings holds the key/value pairs of a layout section, in source order.
type Settings []Setting

type Setting struct {
	Key   string
	Value string
}

// Lookup returns the last value written for key.
func (s Settings) Lookup(key string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Key == key {
			return s[i].Value, true
		}
	}
	return "", false
}

// Convert 把 AST 转换为布局使用的文档模型，layout 段原样返回，交给配置层解释。
func Convert(doc *Document) (*layout.Document, Settings, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("文档为空")
	}
	out := &layout.Document{}
	var settings Settings
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			if err := applyMeta(&out.Meta, sec.Meta.Entries); err != nil {
				return nil, nil, err
			}
		case sec.Layout != nil:
			for _, a := range sec.Layout.Entries {
				v, ok := a.Value.Text()
				if !ok {
					return nil, nil, fmt.Errorf("%s: layout 字段 %s 只接受单个值", a.Pos, a.Key)
				}
				settings = append(settings, Setting{Key: a.Key, Value: v})
			}
		case sec.Item != nil:
			item, err := convertItem(sec.Item)
			if err != nil {
				return nil, nil, err
			}
			out.Items = append(out.Items, item)
		}
	}
	return out, settings, nil
}

func convertItem(sec *ItemSection) (layout.Item, error) {
	align, err := parseAlign(sec.Align, sec)
	if err != nil {
		return layout.Item{}, err
	}
	item := layout.Item{Title: layout.TextBlock{Align: align, Text: string(sec.Title)}}
	for _, p := range sec.Paragraphs {
		pa, err := parseAlign(p.Align, p)
		if err != nil {
			return layout.Item{}, err
		}
		item.Sections = append(item.Sections, layout.TextBlock{Align: pa, Text: string(p.Text)})
	}
	return item, nil
}

func parseAlign(v string, at interface{ position() string }) (layout.Align, error) {
	align, ok := layout.ParseAlign(v)
	if !ok {
		return layout.AlignLeft, fmt.Errorf("%s: 无法识别的对齐方式 %q", at.position(), v)
	}
	return align, nil
}

func (s *ItemSection) position() string { return s.Pos.String() }
func (p *Paragraph) position() string   { return p.Pos.String() }

func applyMeta(meta *layout.DocumentMeta, entries []*Assignment) error {
	for _, a := range entries {
		if a.Key == "keywords" {
			kws, err := stringList(a)
			if err != nil {
				return err
			}
			meta.Keywords = append(meta.Keywords, kws...)
			continue
		}
		v, ok := a.Value.Text()
		if !ok {
			return fmt.Errorf("%s: meta 字段 %s 只接受单个值", a.Pos, a.Key)
		}
		switch strings.ToLower(a.Key) {
		case "title":
			meta.Title = v
		case "author":
			meta.Author = v
		case "subject":
			meta.Subject = v
		case "creator":
			meta.Creator = v
		default:
			return fmt.Errorf("%s: 未知的 meta 字段 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func stringList(a *Assignment) ([]string, error) {
	if a.Value.Array == nil {
		v, _ := a.Value.Text()
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	out := make([]string, 0, len(a.Value.Array.Values))
	for _, v := range a.Value.Array.Values {
		s, ok := v.Text()
		if !ok {
			return nil, fmt.Errorf("%s: %s 不支持嵌套数组", a.Pos, a.Key)
		}
		out = append(out, s)
	}
	return out, nil
}
