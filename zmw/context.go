package zmw

import (
	"context"

	"github.com/SparkleBo/zchain/ziface"
)

// SpanContextKey 共享状态中保存当前 span context 的键
const SpanContextKey = "zmw.span_context"

type getter interface {
	Get(key string) (any, bool)
}

type setter interface {
	Set(key string, val any)
}

// contextOf 优先取共享状态里上游留下的 span context，
// 其次取第一个能提供 context 的参数，没有则用 Background
func contextOf(args ziface.Args) context.Context {
	for _, a := range args {
		g, ok := a.(getter)
		if !ok {
			continue
		}
		if v, ok := g.Get(SpanContextKey); ok {
			if ctx, ok := v.(context.Context); ok {
				return ctx
			}
		}
	}
	for _, a := range args {
		switch v := a.(type) {
		case context.Context:
			return v
		case interface{ Context() context.Context }:
			return v.Context()
		}
	}
	return context.Background()
}

// carry 把 ctx 写入第一个支持共享状态的参数，下游节点据此建立父子 span
func carry(args ziface.Args, ctx context.Context) {
	for _, a := range args {
		if s, ok := a.(setter); ok {
			s.Set(SpanContextKey, ctx)
			return
		}
	}
}
