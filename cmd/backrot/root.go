package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backrot/backrot/internal/config"
	"github.com/backrot/backrot/internal/logger"
	"github.com/backrot/backrot/internal/service"
)

var (
	// Global flags
	cfgFile   string
	rootDir   string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "backrot",
	Short: "Generational rotation for dated backup files",
	Long: `Backrot rotates dated backup files through daily, weekly, monthly and
yearly folders. Files whose date falls on a promotion boundary (Monday,
first of month, first of year) move up a tier once old enough; the rest
are evicted to quarantine and deleted after a grace period.

A file is recognized by its date: either the name starts with YYYY-MM-DD,
or YYYY_MM_DD follows the first underscore. Undated files are never
touched.

Run without a subcommand, backrot performs one rotation pass.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbosity < 0 || verbosity > 3 {
			return fmt.Errorf("verbosity must be between 0 and 3, got %d", verbosity)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation = one pass, like the original tool
		return executePass(false, false)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: search backrot.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "rotation root (default: the executable's directory)")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 1, "log verbosity: 0 warnings, 1 normal, 2 debug, 3 debug plus library logs")
}

// loadConfig loads configuration and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if rootDir != "" {
		cfg.Root = rootDir
	}

	return cfg, nil
}

// buildLogger builds the process logger. The -v flag, when given, wins
// over the configured level; level 3 also installs the handler as the
// process-wide slog default so library logging shares our sinks.
func buildLogger(cfg *config.Config) (logger.Logger, error) {
	logCfg := logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  logger.ParseFormat(cfg.Log.Format),
		Outputs: []logger.OutputConfig{{Type: logger.OutputStdout}},
	}

	if rootCmd.PersistentFlags().Changed("verbosity") {
		logCfg.Level = logger.LevelForVerbosity(verbosity)
		logCfg.InstallDefault = verbosity >= 3
	}

	if cfg.Log.File.Enabled {
		logCfg.Outputs = append(logCfg.Outputs, logger.OutputConfig{Type: logger.OutputFile})
		logCfg.File = logger.FileConfig{
			Enabled:    true,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			MaxBackups: cfg.Log.File.MaxBackups,
			Compress:   cfg.Log.File.Compress,
		}
	}

	return logger.New(logCfg)
}

// executePass loads everything and performs one rotation pass.
// Rotation errors are reported in the summary line and do not fail the
// process unless strict exit is requested.
func executePass(dryRun, strictExit bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Shutdown()

	svc, err := service.New(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()

	if dryRun {
		actions, err := svc.Plan(ctx)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			fmt.Println("Nothing to do")
			return nil
		}
		for _, action := range actions {
			fmt.Println(action.String())
		}
		return nil
	}

	report, err := svc.Run(ctx, "manual")
	if err != nil {
		return err
	}

	if (strictExit || cfg.StrictExit) && report.Errors > 0 {
		return fmt.Errorf("rotation finished with %d error(s)", report.Errors)
	}

	return nil
}
