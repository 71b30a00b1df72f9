package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/engine"
)

// Notifier is a source of hardware-change notifications. Start installs the
// callback; the callback may be invoked from any goroutine.
type Notifier interface {
	Start(callback func()) error
	Stop() error
}

// Daemon ties the configuration source, the engine, and the coordinator
// into the long-running reconfiguration service.
type Daemon struct {
	source *engine.Source
	engine *engine.Engine
	coord  *Coordinator
	format codec.Format
	logger *slog.Logger
}

// New creates a daemon that reapplies the source's configuration after each
// notification, debounced by wait.
func New(source *engine.Source, eng *engine.Engine, format codec.Format, wait time.Duration, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{source: source, engine: eng, format: format, logger: logger}
	d.coord = NewCoordinator(wait, d.reconfigure, logger)
	return d
}

// Notify requests a reconfiguration pass.
func (d *Daemon) Notify() {
	d.coord.Notify()
}

// Completed returns how many reconfiguration passes have finished.
func (d *Daemon) Completed() uint64 {
	return d.coord.Completed()
}

// reconfigure is one full pass: reload the desired configuration,
// re-snapshot the displays, resolve and apply.
func (d *Daemon) reconfigure() error {
	groups, err := d.source.Groups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return engine.ErrNoConfigGroups
	}

	snap, err := d.engine.Backend().Snapshot()
	if err != nil {
		return err
	}
	if state, err := codec.EncodeToString(d.format, engine.SnapshotGroups(snap)); err == nil {
		d.logger.Debug("current display state", "state", state)
	}

	group, err := engine.Resolve(groups, snap, d.format)
	if err != nil {
		return err
	}
	return d.engine.Apply(snap, group)
}

// Run installs the notifier, triggers an initial pass to correct an
// arrangement that was already wrong at startup, and drives the coordinator
// until ctx is cancelled. When exitAfterFirst is set, Run returns after the
// first completed pass.
func (d *Daemon) Run(ctx context.Context, notifier Notifier, exitAfterFirst bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if exitAfterFirst {
		d.coord.SetPassCallback(func(completed uint64) {
			if completed >= 1 {
				cancel()
			}
		})
	}

	if notifier != nil {
		if err := notifier.Start(d.coord.Notify); err != nil {
			return err
		}
		defer func() {
			if err := notifier.Stop(); err != nil {
				d.logger.Warn("failed to stop notifier", "error", err)
			}
		}()
	}

	// Watch the input file when there is one, so configuration edits apply
	// without a hardware event.
	if path := d.source.Path(); path != "" {
		watcher, err := NewInputWatcher(path, d.coord.Notify, d.logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				d.logger.Warn("failed to stop input watcher", "error", err)
			}
		}()
	}

	d.coord.Notify()
	d.coord.Run(ctx)
	return nil
}
