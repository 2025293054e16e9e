package layout

import "golang.org/x/text/language"

// DefaultOutlineLabel 是书签根节点的默认标题。
const DefaultOutlineLabel = "Bookmark"

var (
	outlineLanguages = []language.Tag{
		language.English, // 第一个为匹配失败时的默认值
		language.SimplifiedChinese,
		language.TraditionalChinese,
	}
	outlineLabels = []string{
		DefaultOutlineLabel,
		"书签",
		"書籤",
	}
	outlineMatcher = language.NewMatcher(outlineLanguages)
)

// OutlineLabel 按语言标签（如 "zh-CN"、"zh-TW"、"en"）选择本地化的书签根标题。
func OutlineLabel(tag string) string {
	if tag == "" {
		return DefaultOutlineLabel
	}
	_, idx := language.MatchStrings(outlineMatcher, tag)
	if idx < 0 || idx >= len(outlineLabels) {
		return DefaultOutlineLabel
	}
	return outlineLabels[idx]
}

// outlineBuilder 维护书签树：一个展开的根节点加每个 Item 一个子节点。
type outlineBuilder struct {
	outline Outline
}

func newOutline(label string) *outlineBuilder {
	if label == "" {
		label = DefaultOutlineLabel
	}
	return &outlineBuilder{outline: Outline{Label: label, Open: true, Entries: []Bookmark{}}}
}

// register 必须在标题落位之后、段落排版之前调用，这样书签指向标题所在页。
func (o *outlineBuilder) register(label string, page int, top float64) {
	o.outline.Entries = append(o.outline.Entries, Bookmark{Label: label, Page: page, Top: top})
}
