package std

import (
	"github.com/google/uuid"

	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zrouter"
)

const (
	HeaderRequestID = "X-Request-ID"
	// KeyRequestID 请求 ID 在 Context 共享状态中的键
	KeyRequestID = "request_id"
)

// RequestID 沿用客户端传入的 X-Request-ID，否则生成 UUID，写入响应头与共享状态
func RequestID() ziface.Handler {
	return func(args ziface.Args, next ziface.Next) error {
		if ctx, ok := zrouter.ContextOf(args); ok {
			id := ctx.Header(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			ctx.SetHeader(HeaderRequestID, id)
			ctx.Set(KeyRequestID, id)
		}
		return next()
	}
}
