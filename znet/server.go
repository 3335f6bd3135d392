package znet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zlog"
	"github.com/SparkleBo/zchain/zpipe"
)

// Server 按行处理的 TCP 服务器：每行以 (*Request) 跑一遍 Future 模式管道
// 管道完成写回 Reply（默认回显），失败写回 "ERR <msg>"，节点也可通过 Respond 直接应答
type Server struct {
	Name    string
	Address string
	MaxLine int

	pipe     *zpipe.FuturePipeline
	logger   zerolog.Logger
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func NewServer(name, addr string, opts ...zpipe.Option) *Server {
	logger := zlog.GetLogger("znet").With().Str("server", name).Logger()
	return &Server{
		Name:    name,
		Address: addr,
		MaxLine: 4096,
		pipe:    zpipe.NewFuture(append([]zpipe.Option{zpipe.WithLogger(logger)}, opts...)...),
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Use 注册节点
func (s *Server) Use(hs ...ziface.Handler) error {
	for _, h := range hs {
		if err := s.pipe.Use(h); err != nil {
			return err
		}
	}
	return nil
}

// UseIf 注册带过滤器的节点
func (s *Server) UseIf(f ziface.Filter, h ziface.Handler) error {
	return s.pipe.UseIf(f, h)
}

func (s *Server) Start() error {
	if s.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", s.Address)
	if err != nil {
		return zerr.Wrapf(err, zerr.ErrServer, "listen on %s", s.Address)
	}
	s.listener = l
	s.quit = make(chan struct{})
	s.logger.Info().Str("addr", l.Addr().String()).Int("entries", s.pipe.Len()).Msg("TCP listening")

	s.wg.Add(1)
	go s.accept(l)
	return nil
}

func (s *Server) accept(l net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("accept failed")
			continue
		}
		if !s.track(conn, true) {
			_ = conn.Close()
			return
		}
		s.wg.Add(1)
		// 针对每个 connection 都启动一个 goroutine
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 512), s.MaxLine)
	w := bufio.NewWriter(conn)

	for sc.Scan() {
		req := newRequest(conn, sc.Text())
		reply, ok := s.dispatch(req)
		if !ok {
			return
		}
		if _, err := fmt.Fprintln(w, reply); err != nil {
			s.logger.Error().Err(err).Msg("write failed")
			return
		}
		if err := w.Flush(); err != nil {
			s.logger.Error().Err(err).Msg("flush failed")
			return
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("read failed")
	}
}

// dispatch 等待管道落定、节点直接应答或服务器停止
func (s *Server) dispatch(req *Request) (string, bool) {
	fut := s.pipe.Run(req)
	select {
	case <-fut.Done():
		_, _, err := fut.Result()
		if err != nil {
			s.logger.Debug().Err(err).Str("line", req.Line).Msg("pipeline rejected")
			return "ERR " + err.Error(), true
		}
		if req.Reply != "" {
			return req.Reply, true
		}
		// 回显
		return req.Line, true
	case <-req.answered:
		return req.answer, true
	case <-s.quit:
		return "", false
	}
}

// track 登记或注销连接；停止之后不再接收新连接
func (s *Server) track(conn net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.conns, conn)
		return true
	}
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

// Addr 实际监听地址，Start 之前为配置地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.Address
}

// Stop 关闭监听与所有连接，等待连接 goroutine 退出
func (s *Server) Stop() {
	if s.listener == nil {
		return
	}
	s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("TCP stopping")
	close(s.quit)
	_ = s.listener.Close()
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.listener = nil
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()
}

// Serve 启动并阻塞直到 ctx 结束
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

var _ ziface.Server = (*Server)(nil)
