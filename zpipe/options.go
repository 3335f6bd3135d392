package zpipe

import (
	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/ziface"
)

type options struct {
	intercept  bool
	errHandler ziface.ErrorHandler
	logger     zerolog.Logger
}

// Option 管道构造选项
type Option func(*options)

// WithInterception 开启同步错误拦截：节点返回的错误或 panic 交给错误处理器
func WithInterception() Option {
	return func(o *options) { o.intercept = true }
}

// WithErrorHandler 设置错误处理器并开启拦截；nil 被忽略
func WithErrorHandler(h ziface.ErrorHandler) Option {
	return func(o *options) {
		if h == nil {
			return
		}
		o.intercept = true
		o.errHandler = h
	}
}

// WithLogger 注入日志；默认 zerolog.Nop()，引擎本身不输出任何日志
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Reraise 默认错误处理器：原样重新抛出
func Reraise(_ ziface.Args, err error) error { return err }

func buildOptions(opts []Option) options {
	o := options{errHandler: Reraise, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
