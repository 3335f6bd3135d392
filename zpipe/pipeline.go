// Package zpipe 顺序中间件管道：节点逐个执行，由节点自己决定是否调用 next 继续
package zpipe

import (
	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/zfuture"
	"github.com/SparkleBo/zchain/ziface"
)

// Pipeline 回调完成模式：Run 的最后一个参数是完成回调
type Pipeline struct {
	*Registry
	intercept bool
}

// New 创建空管道
func New(opts ...Option) *Pipeline {
	o := buildOptions(opts)
	return &Pipeline{Registry: newRegistry(o), intercept: o.intercept}
}

// Run 依次执行快照中的节点，全部调用 next 后以其余参数调用完成回调
// 完成回调可以是 ziface.Completion、func(ziface.Args) 或 func()
// 返回值是同步传播出来的错误（拦截模式下为错误处理器重新抛出的错误）
func (p *Pipeline) Run(args ...any) error {
	if len(args) == 0 {
		return zerr.InvalidArgument("run requires a completion callback as last argument")
	}
	done, ok := completion(args[len(args)-1])
	if !ok {
		return zerr.InvalidArgument("last argument of run must be a completion callback, got %T", args[len(args)-1])
	}
	inv := newInvocation(p.Registry, p.intercept, args[:len(args)-1])
	inv.done = done
	inv.recoverPanics = p.intercept
	return inv.start()
}

// FuturePipeline Future 完成模式：Run 不接收完成回调，直接返回 Future
type FuturePipeline struct {
	*Registry
	intercept bool
}

// NewFuture 创建空的 Future 模式管道
func NewFuture(opts ...Option) *FuturePipeline {
	o := buildOptions(opts)
	return &FuturePipeline{Registry: newRegistry(o), intercept: o.intercept}
}

// Run 立即返回 Future：链路走完时以调用参数 resolve；
// 首个从节点中逃逸的错误（含 panic）使其 reject
func (p *FuturePipeline) Run(args ...any) *zfuture.Future[ziface.Args] {
	f, resolve, reject := zfuture.New[ziface.Args]()
	inv := newInvocation(p.Registry, p.intercept, args)
	inv.done = resolve
	inv.reject = reject
	inv.recoverPanics = true
	_ = inv.start()
	return f
}

func newInvocation(r *Registry, intercept bool, args []any) *invocation {
	queue, errHandler := r.snapshot()
	inv := &invocation{
		args:   append(ziface.Args{}, args...),
		queue:  queue,
		logger: r.logger,
	}
	if intercept {
		inv.onError = errHandler
	}
	return inv
}

func completion(v any) (func(ziface.Args), bool) {
	switch fn := v.(type) {
	case ziface.Completion:
		return fn, fn != nil
	case func(ziface.Args):
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func(ziface.Args) { fn() }, true
	}
	return nil, false
}
