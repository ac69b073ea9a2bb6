package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backrot/backrot/internal/config"
	"github.com/backrot/backrot/internal/daemon"
	"github.com/backrot/backrot/internal/service"
	"github.com/backrot/backrot/internal/state"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run rotations continuously",
	Long: `Run rotation passes continuously, triggered by the configured daemon
mode: a fixed interval, a cron schedule, or new files landing in the
daily folder.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the rotation daemon in the foreground",
	Long: `Start the rotation daemon. The daemon runs one catch-up pass, then
keeps rotating on the configured trigger until stopped. It stays in the
foreground; use a service manager to run it in the background.

Examples:
  # Rotate every 24 hours (the default)
  backrot daemon start

  # Rotate at 03:00 every day
  backrot daemon start --config cron.yaml

  # Stop it from another terminal
  backrot daemon stop`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running rotation daemon",
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the rotation daemon is running",
	RunE:  runDaemonStatus,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Shutdown()

	daemonSvc, err := service.NewDaemonService(cfg, log)
	if err != nil {
		return err
	}
	defer daemonSvc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := daemonSvc.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("Daemon running in %s mode (pid %d)\n", cfg.Daemon.Mode, os.Getpid())
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	fmt.Printf("\nReceived signal %s, shutting down\n", sig)
	return daemonSvc.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := cfg.RootDir()
	if err != nil {
		return err
	}

	pidFile := daemon.NewPIDFile(service.PIDPath(root))
	pid, err := pidFile.Read()
	if err != nil {
		return fmt.Errorf("no running daemon found for %s", root)
	}

	if err := pidFile.Kill(); err != nil {
		return fmt.Errorf("stopping daemon: %w", err)
	}

	fmt.Printf("Sent stop signal to daemon (pid %d)\n", pid)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := cfg.RootDir()
	if err != nil {
		return err
	}

	pidFile := daemon.NewPIDFile(service.PIDPath(root))
	running, err := pidFile.IsRunning()
	if err != nil || !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	pid, err := pidFile.Read()
	if err != nil {
		return err
	}
	fmt.Printf("Daemon is running (pid %d)\n", pid)

	if cfg.State.Enabled {
		mgr, err := state.NewManager(config.HouseDir(root, cfg.State.Dir))
		if err != nil {
			return nil
		}
		defer mgr.Close()

		rec, err := mgr.GetLastRun()
		if err == nil && rec != nil {
			fmt.Printf("Last run: %s (%s) promoted=%d quarantined=%d reaped=%d errors=%d\n",
				rec.StartTime.Format("2006-01-02 15:04:05"), rec.Status,
				rec.Promoted, rec.Quarantined, rec.Reaped, rec.Errors)
		}
	}

	return nil
}
