package binding

import (
	"encoding/json"
	"testing"

	"github.com/ByLCY/scroll/layout"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("解析 JSON 失败: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Alice","tags":["a","b"]},"count":1000000,"ok":true,"none":null}`)
	cases := map[string]string{
		"Hi ${user.name}!":       "Hi Alice!",
		"${ user.tags[1] }":      "b",
		"n=${count}":             "n=1000000",
		"${ok}/${none}":          "true/",
		"${missing.path} stays":  "${missing.path} stays",
		"${user.tags[9]} stays":  "${user.tags[9]} stays",
		"${user.tags[x]} stays":  "${user.tags[x]} stays",
		"no placeholders at all": "no placeholders at all",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Fatalf("data 为空时应保持原样，实际 %q", got)
	}
}

func TestApply(t *testing.T) {
	data := decode(t, `{"who":"Bob","topic":"release"}`)
	doc := &layout.Document{
		Meta: layout.DocumentMeta{Title: "Chat with ${who}", Keywords: []string{"${topic}"}},
		Items: []layout.Item{{
			Title:    layout.Right("${who}"),
			Sections: []layout.TextBlock{layout.Center("about ${topic}")},
		}},
	}
	out := Apply(doc, data)
	if out.Meta.Title != "Chat with Bob" || out.Meta.Keywords[0] != "release" {
		t.Fatalf("元信息替换失败: %+v", out.Meta)
	}
	if out.Items[0].Title != layout.Right("Bob") || out.Items[0].Sections[0] != layout.Center("about release") {
		t.Fatalf("正文替换失败或丢失对齐: %+v", out.Items[0])
	}
	if doc.Items[0].Title.Text != "${who}" {
		t.Fatalf("原文档不应被修改")
	}
	if Apply(nil, data) != nil {
		t.Fatalf("nil 文档应返回 nil")
	}
}
