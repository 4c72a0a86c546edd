package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rtsched/internal/model"
	"rtsched/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr, maxHyperperiod string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedulers over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := model.ParseTime(maxHyperperiod)
			if err != nil || limit < 0 {
				return fmt.Errorf("invalid max hyperperiod %q", maxHyperperiod)
			}
			srv := server.New()
			srv.SetMaxHyperperiod(limit)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&maxHyperperiod, "max-hyperperiod", server.DefaultMaxHyperperiod.String(), "Largest hyperperiod a request may simulate, 0 for no limit")
	return serveCmd
}
