package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"fitforge/internal/ledger"
	"fitforge/internal/pipeline"
	"fitforge/internal/session"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show worker health and recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if health, err := fetchHealth(cfg.Paths.APIBind); err != nil {
				fmt.Fprintf(out, "daemon: not reachable at %s (%v)\n\n", cfg.Paths.APIBind, err)
			} else {
				fmt.Fprintf(out, "daemon: %s, uptime %s, processed %d, errors %d, models loaded %t\n\n",
					health.Status,
					health.Uptime.Round(time.Second),
					health.ProcessedCount,
					health.ErrorCount,
					health.ModelsLoaded)
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session ledger: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no sessions recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				errorKind := "-"
				if entry.Outcome == session.StatusFailure {
					errorKind = string(entry.ErrorKind)
				}
				rows = append(rows, []string{
					entry.SessionID,
					entry.UserID,
					string(entry.Outcome),
					errorKind,
					entry.Duration.Round(time.Millisecond).String(),
					entry.RecordedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"SESSION", "USER", "OUTCOME", "ERROR", "DURATION", "RECORDED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of recent sessions to show")
	return cmd
}

func fetchHealth(bind string) (*pipeline.HealthSnapshot, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/health", bind))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health pipeline.HealthSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, err
	}
	return &health, nil
}
