package public

import "github.com/yash9025/WriteOffGenie-sub000/internal/provider"

// Handler 合作伙伴门户接口处理器入口
// 说明：该处理器仅用于伙伴端与上游回调 API。
type Handler struct {
	*provider.Container
}

// New 创建门户处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
