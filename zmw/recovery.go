package zmw

import (
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
)

// Recovery 捕获下游 panic，转为 ErrPanic 错误返回并打印堆栈
func Recovery(logger zerolog.Logger) ziface.Handler {
	return func(args ziface.Args, next ziface.Next) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error().Interface("panic", r).Str("stack", string(stack)).Msg("recovered from panic")
				err = zerr.FromPanic(r, stack)
			}
		}()
		return next()
	}
}
