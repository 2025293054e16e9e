package layout

import (
	"fmt"
	"log/slog"
)

// pageState 是翻页控制器的状态。
type pageState int

const (
	stateNoPage pageState = iota
	statePageOpen
	stateTextMode
)

func (s pageState) String() string {
	switch s {
	case statePageOpen:
		return "page-open"
	case stateTextMode:
		return "text-mode"
	default:
		return "no-page"
	}
}

type pageAccumulator struct {
	runs []TextRun
	// anchored 表示有书签指向本页，即使没有文本也不能丢弃。
	anchored bool
}

// used 报告本页是否有文本或书签。
func (acc *pageAccumulator) used() bool {
	return len(acc.runs) > 0 || acc.anchored
}

// pageCollector 独占游标与页面：只有它创建页面、决定何时翻页。
// cursor 是下一行基线距页面顶部的距离。
type pageCollector struct {
	width    float64
	height   float64
	margin   Margin
	accs     []*pageAccumulator
	state    pageState
	cursor   float64
	fontSize float64
	log      *slog.Logger
}

func newPageCollector(g Geometry, margin Margin, log *slog.Logger) *pageCollector {
	return &pageCollector{
		width:  g.Width,
		height: g.Height,
		margin: margin,
		log:    log,
	}
}

// contentBottom 是基线允许到达的下边界（不含）。
func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

func (pc *pageCollector) pageIndex() int {
	return len(pc.accs) - 1
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return nil
	}
	return pc.accs[len(pc.accs)-1]
}

// openPage 结束当前页（若有），新建一页并进入文本模式，游标回到上边距 + 字号。
func (pc *pageCollector) openPage(size float64) {
	if pc.state == stateTextMode {
		pc.endText()
	}
	pc.accs = append(pc.accs, &pageAccumulator{})
	pc.state = statePageOpen
	pc.beginText(size)
	pc.cursor = pc.margin.Top + size
}

// freshPage 保证从一页的顶部开始：当前页还没有内容时复用它，避免留下空页。
func (pc *pageCollector) freshPage(size float64) {
	if acc := pc.curr(); acc != nil && !acc.used() && pc.state == stateTextMode {
		pc.fontSize = size
		pc.cursor = pc.margin.Top + size
		return
	}
	pc.openPage(size)
}

func (pc *pageCollector) beginText(size float64) {
	pc.fontSize = size
	pc.state = stateTextMode
}

func (pc *pageCollector) endText() {
	pc.state = statePageOpen
}

// roll 在当前页放不下时换到新页面，并恢复当前字号。
func (pc *pageCollector) roll() {
	size := pc.fontSize
	pc.log.Debug("page break", "page", pc.pageIndex()+1, "cursor", pc.cursor, "bottom", pc.contentBottom())
	pc.openPage(size)
}

func (pc *pageCollector) checkRoom() {
	if pc.cursor >= pc.contentBottom() {
		pc.roll()
	}
}

// advance 把游标移到下一行基线：间距 + 下一行字号；越过下边界立即翻页。
func (pc *pageCollector) advance(gap, nextSize float64) {
	pc.cursor += gap + nextSize
	pc.fontSize = nextSize
	pc.checkRoom()
}

// setFontSize 切换字号，基线随字号差调整。
func (pc *pageCollector) setFontSize(size float64) {
	pc.cursor += size - pc.fontSize
	pc.fontSize = size
	pc.checkRoom()
}

// anchor 标记当前页被书签引用，返回页码（从 0 开始）。
func (pc *pageCollector) anchor() int {
	if acc := pc.curr(); acc != nil {
		acc.anchored = true
	}
	return pc.pageIndex()
}

// place 在当前游标处输出一行，x 为已解析的横坐标。
func (pc *pageCollector) place(content string, x, width float64) error {
	if pc.state != stateTextMode {
		return fmt.Errorf("layout: 当前状态 %s 不能输出文本", pc.state)
	}
	if pc.cursor >= pc.contentBottom() {
		return fmt.Errorf("layout: 基线 %g 越过下边界 %g", pc.cursor, pc.contentBottom())
	}
	acc := pc.curr()
	acc.runs = append(acc.runs, TextRun{
		Content:  content,
		X:        x,
		Y:        pc.height - pc.cursor,
		Width:    width,
		FontSize: pc.fontSize,
	})
	return nil
}

// finish 关闭文本模式。空文档仍输出一页空白页；
// 末尾因段落间距翻出、既无文本也无书签的空页会被丢弃。
func (pc *pageCollector) finish(size float64) {
	if pc.state == stateNoPage {
		pc.openPage(size)
	}
	if pc.state == stateTextMode {
		pc.endText()
	}
	if n := len(pc.accs); n > 1 && !pc.accs[n-1].used() {
		pc.accs = pc.accs[:n-1]
	}
	pc.state = stateNoPage
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Runs:   acc.runs,
		}
	}
	return out
}
