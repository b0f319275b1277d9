package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fitforge/internal/ledger"
)

func newCheckCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the worker deployment",
		Long:  "Checks configuration, model directories, and the session ledger. Exits non-zero when anything required is missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := false
			report := func(name string, err error) {
				if err != nil {
					failed = true
					fmt.Fprintf(out, "FAIL %-18s %v\n", name, err)
					return
				}
				fmt.Fprintf(out, "ok   %s\n", name)
			}

			report("config", nil)
			report("work dir", checkDir(cfg.Paths.WorkDir))
			report("model dir", checkDir(cfg.Models.ModelDir))
			report("weights dir", checkDir(cfg.Models.WeightsDir))
			report("romp config", checkFile(cfg.Models.ROMPConfigPath))
			report("smplify config", checkFile(cfg.Models.SMPLifyConfigPath))
			report("storage root", checkDir(cfg.Storage.Root))

			report("ledger", func() error {
				store, err := ledger.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				_, err = store.TotalCounts(cmd.Context())
				return err
			}())

			if failed {
				return fmt.Errorf("deployment check failed")
			}
			return nil
		},
	}
}

func checkFile(path string) error {
	if path == "" {
		return fmt.Errorf("not configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file", path)
	}
	return nil
}

func checkDir(path string) error {
	if path == "" {
		return fmt.Errorf("not configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
