package ziface

// Args 管道调用参数，原样（按引用）传递给每个节点与完成回调
type Args []any

// Next 续延：调用即把控制权交给下一个节点，返回后续链路产生的错误
// 不调用 Next 即静默终止整条链路
type Next func() error

// Handler 管道节点
type Handler func(args Args, next Next) error

// Filter 过滤谓词，返回 false 时跳过对应节点
type Filter func(args Args) bool

// Completion 链路走完时的完成回调
type Completion func(args Args)

// ErrorHandler 错误拦截处理器，返回值即重新抛出的错误（nil 表示吞掉）
type ErrorHandler func(args Args, err error) error

// Endpoint 终端处理器：拥有请求的剩余处理，不再继续链路
type Endpoint func(ctx Context) error
