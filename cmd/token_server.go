package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ipm-quickstart/tokenserver"
)

func newTokenServerCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "token-server",
		Short: "Serve access tokens over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.TokenServer.Listen = listen
			}
			log, closeLog, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			issuer, err := tokenserver.NewIssuer(issuerConfig(cfg.TokenServer))
			if err != nil {
				return err
			}
			srv := tokenserver.New(issuer, tokenserver.WithLogger(log))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.TokenServer.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8000", "Address to listen on (overrides config)")
	return cmd
}
