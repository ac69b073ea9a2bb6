package main

import (
	"github.com/spf13/cobra"
)

var runFlags struct {
	dryRun     bool
	strictExit bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform one rotation pass",
	Long: `Perform one rotation pass: promote files on a boundary date, evict the
rest to quarantine, and reap quarantined files past the grace period.

Examples:
  # Rotate the folders next to the binary
  backrot run

  # Rotate an explicit root
  backrot run --root /srv/backups

  # Show what would happen without touching anything
  backrot run --dry-run

  # Make absorbed per-file errors fail the process
  backrot run --strict-exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executePass(runFlags.dryRun, runFlags.strictExit)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "print planned actions without touching anything")
	runCmd.Flags().BoolVar(&runFlags.strictExit, "strict-exit", false, "exit non-zero when the pass absorbed errors")
}
