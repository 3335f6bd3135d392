package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/SparkleBo/zchain/zconf"
	"github.com/SparkleBo/zchain/zhttp/std"
	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zlog"
	"github.com/SparkleBo/zchain/zmw"
	"github.com/SparkleBo/zchain/zrouter"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.HTTP.Addr = addr
			}
			s, err := buildHTTPServer(opts.cfg)
			if err != nil {
				return err
			}
			done := zlog.LogOperationStart(zlog.GetLogger("cmd"), "serve")
			defer done()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func buildHTTPServer(cfg *zconf.Config) (*std.Server, error) {
	s := std.New(cfg.HTTP.Addr)

	// 全局节点：请求 ID、追踪、访问日志、限流
	tooMany := func(args ziface.Args) error {
		ctx, ok := zrouter.ContextOf(args)
		if !ok {
			return nil
		}
		return ctx.String(http.StatusTooManyRequests, "too many requests")
	}
	if err := s.Use(
		std.RequestID(),
		zmw.Tracing(otel.Tracer("zchain/http"), "http.request"),
		zmw.Logging(zlog.GetLogger("access")),
		zmw.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, tooMany),
	); err != nil {
		return nil, err
	}

	if err := s.Route("GET", "/", func(ctx ziface.Context) error {
		return ctx.String(http.StatusOK, "hello, zchain")
	}); err != nil {
		return nil, err
	}

	users := s.Group("/users")
	if err := users.Handle("GET", "/:id", func(ctx ziface.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"id": ctx.Param("id"), "time": time.Now().Format(time.RFC3339)})
	}); err != nil {
		return nil, err
	}
	return s, nil
}
