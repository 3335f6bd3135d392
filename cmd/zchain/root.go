package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SparkleBo/zchain/internal/version"
	"github.com/SparkleBo/zchain/zconf"
	"github.com/SparkleBo/zchain/zlog"
)

type rootOptions struct {
	verbosity  int
	configPath string
	cfg        *zconf.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "zchain",
		Short: "Sequential middleware pipelines over HTTP and TCP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := zconf.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			zlog.Setup(max(opts.verbosity, cfg.Log.Verbosity), cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.toml or .yaml)")

	cmd.AddCommand(newServeCmd(opts), newTCPCmd(opts), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "zchain "+version.String())
		},
	}
}
