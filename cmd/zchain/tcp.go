package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SparkleBo/zchain/zconf"
	"github.com/SparkleBo/zchain/ziface"
	"github.com/SparkleBo/zchain/zlog"
	"github.com/SparkleBo/zchain/zmw"
	"github.com/SparkleBo/zchain/znet"
	"github.com/SparkleBo/zchain/zpipe"
)

func newTCPCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "tcp",
		Short: "Run the line-oriented TCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.TCP.Addr = addr
			}
			s, err := buildTCPServer(opts.cfg)
			if err != nil {
				return err
			}
			done := zlog.LogOperationStart(zlog.GetLogger("cmd"), "tcp")
			defer done()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides tcp.addr)")
	return cmd
}

// prefixed 按命令前缀过滤
func prefixed(cmd string) ziface.Filter {
	return func(args ziface.Args) bool {
		if len(args) == 0 {
			return false
		}
		req, ok := args[0].(*znet.Request)
		return ok && (req.Line == cmd || strings.HasPrefix(req.Line, cmd+" "))
	}
}

func buildTCPServer(cfg *zconf.Config) (*znet.Server, error) {
	logger := zlog.GetLogger("tcp")

	var opts []zpipe.Option
	if cfg.Pipeline.Intercept {
		opts = append(opts, zpipe.WithErrorHandler(func(args ziface.Args, err error) error {
			logger.Warn().Err(err).Msg("line rejected")
			return err
		}))
	}
	s := znet.NewServer("zchain", cfg.TCP.Addr, opts...)
	s.MaxLine = cfg.TCP.MaxLine

	limited := func(args ziface.Args) error {
		args[0].(*znet.Request).Respond("ERR rate limited")
		return nil
	}
	if err := s.Use(
		zmw.Logging(logger),
		zmw.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limited),
	); err != nil {
		return nil, err
	}
	if err := s.UseIf(prefixed("upper"), func(args ziface.Args, next ziface.Next) error {
		req := args[0].(*znet.Request)
		req.Reply = strings.ToUpper(strings.TrimPrefix(req.Line, "upper "))
		return next()
	}); err != nil {
		return nil, err
	}
	if err := s.UseIf(prefixed("quit"), func(args ziface.Args, next ziface.Next) error {
		args[0].(*znet.Request).Respond("bye")
		return nil
	}); err != nil {
		return nil, err
	}
	return s, nil
}
