package layout

import "testing"

func TestResolveX(t *testing.T) {
	cases := []struct {
		align Align
		width float64
		want  float64
	}{
		{AlignLeft, 100, 30},
		{AlignCenter, 95, 250},
		{AlignRight, 100, 465},
	}
	for _, tc := range cases {
		if got := ResolveX(tc.align, tc.width, 595, 30, 30); got != tc.want {
			t.Fatalf("%s: 期望 x=%g，实际 %g", tc.align, tc.want, got)
		}
	}
}

func TestPrintable(t *testing.T) {
	if !printable("普通文本 plain") {
		t.Fatalf("普通文本应可输出")
	}
	for _, s := range []string{"a\nb", "tab\there", "nul\x00"} {
		if printable(s) {
			t.Fatalf("%q 含控制字符，不应输出", s)
		}
	}
}

func TestParseAlign(t *testing.T) {
	cases := map[string]Align{
		"left": AlignLeft, "start": AlignLeft,
		"Center": AlignCenter, "middle": AlignCenter,
		"right": AlignRight, "END": AlignRight,
	}
	for in, want := range cases {
		got, ok := ParseAlign(in)
		if !ok || got != want {
			t.Fatalf("ParseAlign(%q) 期望 %s，实际 %s ok=%v", in, want, got, ok)
		}
	}
	if _, ok := ParseAlign("justify"); ok {
		t.Fatalf("justify 不应被接受")
	}
}
