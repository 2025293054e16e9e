package layout

import "testing"

func newTestCollector() *pageCollector {
	return newPageCollector(DefaultGeometry(), DefaultProperties().Margin, discardLogger())
}

func TestOpenPageResetsCursor(t *testing.T) {
	pc := newTestCollector()
	if pc.state != stateNoPage {
		t.Fatalf("初始状态应为 no-page，实际 %s", pc.state)
	}
	pc.openPage(30)
	if pc.state != stateTextMode {
		t.Fatalf("开页后应处于文本模式，实际 %s", pc.state)
	}
	if pc.cursor != 60 {
		t.Fatalf("开页后游标应为上边距+字号=60，实际 %g", pc.cursor)
	}
}

func TestAdvanceBoundaryIsInclusive(t *testing.T) {
	pc := newTestCollector()
	pc.openPage(20) // cursor = 50，下边界 842-30 = 812
	pc.advance(741, 20)
	if len(pc.accs) != 1 || pc.cursor != 811 {
		t.Fatalf("811 < 812 不应翻页: pages=%d cursor=%g", len(pc.accs), pc.cursor)
	}

	pc = newTestCollector()
	pc.openPage(20)
	pc.advance(742, 20) // 正好落在 812
	if len(pc.accs) != 2 {
		t.Fatalf("游标等于下边界时应翻页，实际页数 %d", len(pc.accs))
	}
	if pc.cursor != 50 || pc.fontSize != 20 {
		t.Fatalf("翻页后游标应为 50、字号 20，实际 %g/%g", pc.cursor, pc.fontSize)
	}
	if pc.state != stateTextMode {
		t.Fatalf("翻页后应重新进入文本模式，实际 %s", pc.state)
	}
}

func TestSetFontSizeRolls(t *testing.T) {
	pc := newTestCollector()
	pc.openPage(20)
	pc.advance(735, 20) // 805
	pc.setFontSize(30)  // 815 >= 812
	if len(pc.accs) != 2 || pc.cursor != 60 {
		t.Fatalf("切换字号越界应翻页并以新字号复位: pages=%d cursor=%g", len(pc.accs), pc.cursor)
	}
}

func TestPlaceRequiresTextMode(t *testing.T) {
	pc := newTestCollector()
	if err := pc.place("x", 0, 0); err == nil {
		t.Fatalf("未开页时输出文本应报错")
	}
	pc.openPage(20)
	if err := pc.place("x", 30, 10); err != nil {
		t.Fatalf("输出失败: %v", err)
	}
	run := pc.accs[0].runs[0]
	if run.Y != 842-50 || run.FontSize != 20 {
		t.Fatalf("基线应为页高-游标=792、字号 20，实际 %+v", run)
	}
}

func TestFinishEmptyAndTrailingPage(t *testing.T) {
	pc := newTestCollector()
	pc.finish(30)
	if pages := pc.pages(); len(pages) != 1 || len(pages[0].Runs) != 0 {
		t.Fatalf("空文档应输出一页空白页，实际 %d 页", len(pages))
	}
	if pc.state != stateNoPage {
		t.Fatalf("结束后应回到 no-page，实际 %s", pc.state)
	}

	pc = newTestCollector()
	pc.openPage(20)
	if err := pc.place("last", 30, 40); err != nil {
		t.Fatalf("输出失败: %v", err)
	}
	pc.advance(800, 20) // 段落间距翻出空页
	if len(pc.accs) != 2 {
		t.Fatalf("应已翻页")
	}
	pc.finish(30)
	if len(pc.pages()) != 1 {
		t.Fatalf("末尾空页应被丢弃，实际 %d 页", len(pc.pages()))
	}
}

func TestFinishKeepsAnchoredPage(t *testing.T) {
	pc := newTestCollector()
	pc.openPage(20)
	if err := pc.place("last", 30, 40); err != nil {
		t.Fatalf("输出失败: %v", err)
	}
	pc.advance(800, 20)
	if idx := pc.anchor(); idx != 1 {
		t.Fatalf("书签应落在第 2 页，实际索引 %d", idx)
	}
	pc.freshPage(30)
	if len(pc.accs) != 3 {
		t.Fatalf("带书签的空页不应被复用，实际 %d 页", len(pc.accs))
	}
	pc.finish(30)
	if n := len(pc.pages()); n != 2 {
		t.Fatalf("带书签的页应保留、末尾空页应丢弃，实际 %d 页", n)
	}
}

func TestFreshPageReusesEmptyPage(t *testing.T) {
	pc := newTestCollector()
	pc.openPage(20)
	pc.advance(10, 20)
	pc.freshPage(30)
	if len(pc.accs) != 1 || pc.cursor != 60 {
		t.Fatalf("空页应被复用: pages=%d cursor=%g", len(pc.accs), pc.cursor)
	}
	if err := pc.place("x", 30, 10); err != nil {
		t.Fatalf("输出失败: %v", err)
	}
	pc.freshPage(30)
	if len(pc.accs) != 2 {
		t.Fatalf("有内容的页之后应新开一页，实际 %d 页", len(pc.accs))
	}
}
