package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fitforge/internal/daemon"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the worker daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			w, err := buildWorker(cfg, logger)
			if err != nil {
				return err
			}
			defer w.close()

			source, err := w.source()
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, w.processor, source, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			d.Stop()
			return nil
		},
	}
}
