package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskflow/internal/app"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var (
		fontPath string
		migrate  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if migrate {
				cfg.Database.AutoMigrate = true
			}
			ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg, fontPath)
		},
	}
	cmd.Flags().StringVar(&fontPath, "font", "", "TTF font for PDF reports (Helvetica when empty)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
