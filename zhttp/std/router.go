package std

import (
	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zrouter"
)

// Handle 注册路由，实现 ziface.Router
func (s *Server) Handle(method, path string, h ziface.Endpoint) error {
	return s.Route(method, path, h)
}

// Group 返回带前缀的子 Router，注册写入同一条管道
func (s *Server) Group(prefix string) ziface.Router {
	return &group{server: s, prefix: zrouter.Join("", prefix)}
}

type group struct {
	server *Server
	prefix string
}

func (g *group) Handle(method, path string, h ziface.Endpoint) error {
	return g.server.Route(method, zrouter.Join(g.prefix, path), h)
}

func (g *group) Group(prefix string) ziface.Router {
	return &group{server: g.server, prefix: zrouter.Join(g.prefix, prefix)}
}

// endpoint 路由终端节点：挂载路径参数后交给 Endpoint，不再调用 next
func endpoint(p *zrouter.Pattern, h ziface.Endpoint) ziface.Handler {
	return func(args ziface.Args, _ ziface.Next) error {
		ctx, ok := zrouter.ContextOf(args)
		if !ok {
			return nil
		}
		if pc, ok := ctx.(interface{ AttachParams(map[string]string) }); ok {
			params, _ := p.Match(ctx.Method(), ctx.Path())
			pc.AttachParams(params)
		}
		return h(ctx)
	}
}

var _ ziface.Router = (*Server)(nil)
var _ ziface.Router = (*group)(nil)
