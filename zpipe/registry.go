package zpipe

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
)

// Registry 按注册顺序保存管道节点，以及一个可替换的错误处理器
// 只支持追加，不支持删除与重排
type Registry struct {
	mu         sync.RWMutex
	entries    []ziface.Handler
	errHandler ziface.ErrorHandler
	logger     zerolog.Logger
}

func newRegistry(o options) *Registry {
	return &Registry{errHandler: o.errHandler, logger: o.logger}
}

// Use 追加普通节点
func (r *Registry) Use(h ziface.Handler) error {
	if h == nil {
		return zerr.InvalidArgument("handler must be a function")
	}
	r.append(h)
	return nil
}

// UseIf 追加带过滤器的节点：每次分发先求值 f，为 false 时直接进入下一个节点
func (r *Registry) UseIf(f ziface.Filter, h ziface.Handler) error {
	if f == nil {
		return zerr.InvalidArgument("filter must be a function")
	}
	if h == nil {
		return zerr.InvalidArgument("handler must be a function")
	}
	r.append(r.filtered(f, h))
	return nil
}

// SetErrorHandler 替换错误处理器，只对之后开始的 run 生效
func (r *Registry) SetErrorHandler(h ziface.ErrorHandler) error {
	if h == nil {
		return zerr.InvalidArgument("error handler must be a function")
	}
	r.mu.Lock()
	r.errHandler = h
	r.mu.Unlock()
	return nil
}

// Len 已注册节点数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) append(h ziface.Handler) {
	r.mu.Lock()
	r.entries = append(r.entries, h)
	r.mu.Unlock()
}

// snapshot 每次 run 独占一份副本，运行中的 Use 不影响本次 run
func (r *Registry) snapshot() ([]ziface.Handler, ziface.ErrorHandler) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ziface.Handler(nil), r.entries...), r.errHandler
}

// filtered 过滤器只拿到参数副本，拿不到续延
func (r *Registry) filtered(f ziface.Filter, h ziface.Handler) ziface.Handler {
	logger := r.logger
	return func(args ziface.Args, next ziface.Next) error {
		if !f(append(ziface.Args(nil), args...)) {
			logger.Debug().Int("args", len(args)).Msg("entry skipped by filter")
			return next()
		}
		return h(args, next)
	}
}
