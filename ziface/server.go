package ziface

import "context"

// Server 传输层服务器抽象
type Server interface {
	// Start 非阻塞启动
	Start() error
	Stop()
	// Serve 阻塞直到 ctx 结束
	Serve(ctx context.Context) error
	Addr() string
}
