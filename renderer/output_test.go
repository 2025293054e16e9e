package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("准备旧文件失败: %v", err)
	}
	if err := WriteFile(path, []byte("%PDF-new")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF-new" {
		t.Fatalf("目标文件内容不符: %q err=%v", got, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("不应残留临时文件，目录中有 %d 个文件", len(entries))
	}
}

func TestWriteFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.pdf")
	err := WriteFile(path, []byte("x"))
	if err == nil {
		t.Fatalf("目录不存在时应报错")
	}
	if CodeOf(err) != CodeOutput || !errors.Is(err, ErrOutput) {
		t.Fatalf("期望 OUTPUT 错误码，实际 %v", err)
	}
	if err := CheckWritable(path); CodeOf(err) != CodeOutput {
		t.Fatalf("CheckWritable 期望 OUTPUT 错误码，实际 %v", err)
	}
	if err := CheckWritable(t.TempDir()); CodeOf(err) != CodeOutput {
		t.Fatalf("目标为目录时应报错，实际 %v", err)
	}
}

func TestCheckWritableLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	if err := CheckWritable(filepath.Join(dir, "out.pdf")); err != nil {
		t.Fatalf("可写目录不应报错: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("检查后不应留下文件，实际 %d 个", len(entries))
	}
}

func TestRenderErrorChain(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("export: %w", Wrap(CodeEngine, "render", base))
	if !errors.Is(err, base) {
		t.Fatalf("应能匹配底层错误")
	}
	if !errors.Is(err, ErrEngine) || errors.Is(err, ErrOutput) {
		t.Fatalf("错误码匹配不符: %v", err)
	}
	if Wrap(CodeOutput, "x", nil) != nil {
		t.Fatalf("nil 错误应保持 nil")
	}
	if CodeOf(Wrap(CodeOutput, "outer", err)) != CodeEngine {
		t.Fatalf("已有错误码时不应被覆盖")
	}
	if CodeOf(base) != "" {
		t.Fatalf("普通错误不应有错误码")
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, []byte("abc")); err != nil || buf.String() != "abc" {
		t.Fatalf("WriteTo 失败: %q %v", buf.String(), err)
	}
}
