package ziface

// Router 路由抽象：每条路由注册为带过滤器的管道节点
type Router interface {
	Handle(method, path string, h Endpoint) error
	Group(prefix string) Router
}
