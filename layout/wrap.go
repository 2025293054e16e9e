package layout

// Wrap 用贪心算法把一段文本切成宽度不超过 budget 的若干行。
//
// 每行先取 minChars 个字符，再逐字符增长，直到再加一个字符就会使测量宽度 >= budget。
// 不识别单词边界，断行可以落在单词中间。剩余字符不超过 minChars 时整体作为最后一行；
// 若 minChars 个字符本身已经达到 budget，则照样输出这一块，不再向下拆分。
// 把所有行按顺序拼接起来正好是原文本。
func Wrap(text string, budget float64, minChars int, measure func(string) (float64, error)) ([]Line, error) {
	if minChars < 1 {
		minChars = 1
	}
	runes := []rune(text)
	total := len(runes)
	var lines []Line

	pos := 0
	for pos < total {
		if total-pos <= minChars {
			tail := string(runes[pos:])
			w, err := measure(tail)
			if err != nil {
				return nil, err
			}
			lines = append(lines, Line{Text: tail, Width: w})
			break
		}

		n := minChars
		width, err := measure(string(runes[pos : pos+n]))
		if err != nil {
			return nil, err
		}
		if width < budget {
			for pos+n < total {
				grown, err := measure(string(runes[pos : pos+n+1]))
				if err != nil {
					return nil, err
				}
				if grown >= budget {
					break
				}
				n++
				width = grown
			}
		}
		lines = append(lines, Line{Text: string(runes[pos : pos+n]), Width: width})
		pos += n
	}
	return lines, nil
}
