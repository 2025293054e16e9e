package renderer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CheckWritable 在排版之前确认目标目录存在且可以创建文件。
func CheckWritable(path string) error {
	if path == "" {
		return Errorf(CodeOutput, "open", "输出路径为空")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Errorf(CodeOutput, "open", "%s 是目录", path)
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".scroll-check-*")
	if err != nil {
		return Wrap(CodeOutput, "open", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}

// WriteFile 先写入同目录下的临时文件，成功后再重命名为 path。
// 任一步失败都会删除临时文件，目标文件保持原样。
func WriteFile(path string, data []byte) (err error) {
	if path == "" {
		return Errorf(CodeOutput, "write", "输出路径为空")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Wrap(CodeOutput, "write", err)
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(name)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return Wrap(CodeOutput, "write", err)
	}
	if err = tmp.Sync(); err != nil {
		return Wrap(CodeOutput, "sync", err)
	}
	if err = tmp.Close(); err != nil {
		return Wrap(CodeOutput, "close", err)
	}
	if err = os.Chmod(name, 0o644); err != nil {
		return Wrap(CodeOutput, "chmod", err)
	}
	if err = os.Rename(name, path); err != nil {
		return Wrap(CodeOutput, "rename", fmt.Errorf("%s -> %s: %w", name, path, err))
	}
	return nil
}

// WriteTo 把数据写到任意 io.Writer（例如标准输出）。
func WriteTo(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return Wrap(CodeOutput, "write", err)
	}
	return nil
}
