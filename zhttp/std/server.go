package std

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zlog"
	"github.com/SparkleBo/zchain/zpipe"
	"github.com/SparkleBo/zchain/zrouter"
)

// Server 基于 net/http 的服务器：每个请求以 (ctx, done) 跑一遍管道
// 节点须在 ServeHTTP 返回前同步完成（调用或放弃 next），上下文随后归还对象池
type Server struct {
	addr       string
	pipe       *zpipe.Pipeline
	logger     zerolog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// New 创建服务器；默认开启错误拦截，节点错误统一响应 500
// opts 可覆盖错误处理器等管道选项
func New(addr string, opts ...zpipe.Option) *Server {
	s := &Server{addr: addr, logger: zlog.GetLogger("zhttp")}
	base := []zpipe.Option{zpipe.WithLogger(s.logger), zpipe.WithErrorHandler(s.internalError)}
	s.pipe = zpipe.New(append(base, opts...)...)
	return s
}

// Use 注册全局节点，按注册顺序执行
func (s *Server) Use(hs ...ziface.Handler) error {
	for _, h := range hs {
		if err := s.pipe.Use(h); err != nil {
			return err
		}
	}
	return nil
}

// Route 注册路由：作为带过滤器的节点追加到管道，先注册者优先
func (s *Server) Route(method, path string, h ziface.Endpoint) error {
	if h == nil {
		return zerr.InvalidArgument("endpoint for %s %s must be a function", method, path)
	}
	p := zrouter.Compile(method, path)
	s.logger.Debug().Str("route", p.String()).Msg("route registered")
	return s.pipe.UseIf(p.Filter(), endpoint(p, h))
}

// SetErrorHandler 替换默认的 500 错误处理
func (s *Server) SetErrorHandler(h ziface.ErrorHandler) error {
	return s.pipe.SetErrorHandler(h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := AcquireContext(w, r)
	defer ReleaseContext(ctx)

	// 管道走完说明没有节点接管请求
	done := func() {
		if !ctx.Written() {
			_ = ctx.String(http.StatusNotFound, "404 page not found")
		}
	}
	if err := s.pipe.Run(ctx, done); err != nil {
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unhandled pipeline error")
		if !ctx.Written() {
			_ = ctx.String(http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
		}
	}
}

// internalError 默认错误处理器：记录日志并响应 500，错误就此吞掉
func (s *Server) internalError(args ziface.Args, err error) error {
	ctx, ok := zrouter.ContextOf(args)
	if !ok {
		return err
	}
	ev := s.logger.Error().Err(err).Str("code", string(zerr.GetErrorCode(err))).
		Str("method", ctx.Method()).Str("path", ctx.Path())
	if stack := zerr.Stack(err); stack != "" {
		ev = ev.Str("stack", stack)
	}
	ev.Msg("pipeline error")
	if !ctx.Written() {
		_ = ctx.String(http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
	}
	return nil
}

// Start 监听端口并在后台处理请求（非阻塞）
func (s *Server) Start() error {
	if s.httpServer != nil {
		return nil
	}
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return zerr.Wrapf(err, zerr.ErrServer, "listen on %s", s.addr)
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	s.listener = l
	s.httpServer = srv

	go func() {
		s.logger.Info().Str("addr", l.Addr().String()).Int("entries", s.pipe.Len()).Msg("HTTP listening")
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server serve")
		}
	}()
	return nil
}

// Addr 实际监听地址，Start 之前为配置地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop 优雅停止 HTTP 服务器
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("http server shutdown")
	}
	s.httpServer = nil
	s.listener = nil
}

// Serve 启动并阻塞直到 ctx 结束，然后优雅停止
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

var _ ziface.Server = (*Server)(nil)
