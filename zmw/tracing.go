package zmw

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SparkleBo/zchain/ziface"
)

// Tracing 用 span 包裹下游链路的同步部分，记录错误
// 参数支持 Set/Get（如 ziface.Context）时，span context 存入 SpanContextKey，
// 下游的 Tracing 节点据此创建子 span；否则各 span 互不关联
func Tracing(tracer trace.Tracer, name string) ziface.Handler {
	return func(args ziface.Args, next ziface.Next) error {
		ctx, span := tracer.Start(contextOf(args), name, trace.WithAttributes(attribute.Int("pipeline.args", len(args))))
		defer span.End()
		carry(args, ctx)

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
