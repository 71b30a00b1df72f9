package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/screenplan/internal/daemon"
	"github.com/jmylchreest/screenplan/internal/dbus"
	"github.com/jmylchreest/screenplan/internal/engine"
)

var daemonOpts struct {
	wait         string
	exitAfterOne bool
}

// daemonCmd runs the reconfiguration coordinator until interrupted,
// reapplying the desired configuration whenever the hardware changes.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run in daemon mode, updating when the hardware configuration changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		waitStr := daemonOpts.wait
		if waitStr == "" {
			waitStr = settings.Daemon.Wait
		}
		wait, err := time.ParseDuration(waitStr)
		if err != nil {
			return fmt.Errorf("invalid wait period: %w", err)
		}

		backend, err := newBackend()
		if err != nil {
			return err
		}
		eng := engine.New(backend, format, logger)

		source, err := newSource()
		if err != nil {
			return err
		}

		var notifier daemon.Notifier
		if !globalOpts.fake {
			notifier, err = dbus.NewMonitor(logger)
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("daemon mode selected", "wait", wait)
		d := daemon.New(source, eng, format, wait, logger)
		return d.Run(ctx, notifier, daemonOpts.exitAfterOne)
	},
}

func init() {
	daemonCmd.Flags().StringVarP(&daemonOpts.wait, "wait", "w", "",
		"How long to wait after a reconfiguration event before updating (default from settings, 2s)")
	daemonCmd.Flags().BoolVarP(&daemonOpts.exitAfterOne, "exit", "e", false,
		"Exit the daemon after the first reconfiguration")
	_ = daemonCmd.Flags().MarkHidden("exit")
	rootCmd.AddCommand(daemonCmd)
}
