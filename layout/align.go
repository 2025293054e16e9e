package layout

import "unicode"

// ResolveX 计算一行文本的起始横坐标。
// 居中按整页宽度计算，不考虑左右边距；右对齐贴住右边距。
func ResolveX(align Align, width, pageWidth, leftMargin, rightMargin float64) float64 {
	switch align {
	case AlignCenter:
		return (pageWidth - width) / 2
	case AlignRight:
		return pageWidth - width - rightMargin
	default:
		return leftMargin
	}
}

// printable 报告一行文本能否作为单个 textOut 输出。含控制字符（包括换行）的行会被跳过。
func printable(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
