package renderer

import (
	"errors"
	"fmt"
)

// Code classifies render failures.
type Code string

const (
	CodeEngine Code = "ENGINE" // PDF 引擎报告的致命错误，包括测量失败与引擎 panic
	CodeOutput Code = "OUTPUT" // 目标文件无法打开或写入
	CodeInput  Code = "INPUT"  // 文档或配置无效
)

// RenderError 是渲染链路上的结构化错误。
type RenderError struct {
	Code Code
	Op   string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is a RenderError with the same Code.
func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)
	return ok && t.Code == e.Code
}

// Errorf 构造一个带错误码的 RenderError，格式化规则同 fmt.Errorf（支持 %w）。
func Errorf(code Code, op, format string, args ...any) error {
	return &RenderError{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap 给 err 附加错误码；err 为 nil 时返回 nil，已带错误码的错误原样返回。
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Code: code, Op: op, Err: err}
}

// CodeOf 提取错误链上的错误码，没有时返回空字符串。
func CodeOf(err error) Code {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Sentinels for errors.Is checks.
var (
	ErrEngine = &RenderError{Code: CodeEngine}
	ErrOutput = &RenderError{Code: CodeOutput}
	ErrInput  = &RenderError{Code: CodeInput}
)
