package renderer

import "github.com/ByLCY/scroll/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误；失败时不返回部分数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Engine 同时提供测量与渲染：布局阶段用它测量，渲染阶段用它输出，保证两边字体一致。
type Engine interface {
	Renderer
	layout.Measurer
}
