package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backrot/backrot/internal/config"
	"github.com/backrot/backrot/internal/state"
)

var statusFlags struct {
	limit int
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent rotation runs",
	Long: `Show recent rotation runs from the run history, most recent first.

Examples:
  # The last 10 runs
  backrot status

  # More history
  backrot status --limit 50`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusFlags.limit, "limit", 10, "number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.State.Enabled {
		return fmt.Errorf("run history is disabled in configuration")
	}

	root, err := cfg.RootDir()
	if err != nil {
		return err
	}

	mgr, err := state.NewManager(config.HouseDir(root, cfg.State.Dir))
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer mgr.Close()

	records, err := mgr.GetHistory(statusFlags.limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-8s  %-8s  promoted=%d quarantined=%d reaped=%d errors=%d\n",
			rec.StartTime.Format("2006-01-02 15:04:05"), rec.Trigger, rec.Status,
			rec.Promoted, rec.Quarantined, rec.Reaped, rec.Errors)
		if rec.Error != "" {
			fmt.Printf("    %s\n", rec.Error)
		}
	}

	return nil
}
