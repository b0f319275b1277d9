package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fitforge/internal/session"
)

func newProcessCommand(configFlag *string) *cobra.Command {
	var req session.Request

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single session and exit",
		Long:  "Runs one session through the full pipeline from the command line. Intended for operators verifying a deployment.",
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

			result, err := w.processor.Process(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session %s completed in %s\n", result.SessionID, result.ProcessingTime.Round(time.Millisecond))
			for _, kind := range session.AssetKinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %s\n", kind, result.AssetKeys[kind])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.SessionID, "session-id", "", "Session identifier")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "User identifier")
	cmd.Flags().StringVar(&req.AvatarKey, "avatar-key", "", "Avatar image key in the uploads bucket")
	cmd.Flags().StringVar(&req.GarmentKey, "garment-key", "", "Garment image key in the uploads bucket")
	_ = cmd.MarkFlagRequired("session-id")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("avatar-key")
	_ = cmd.MarkFlagRequired("garment-key")

	return cmd
}
