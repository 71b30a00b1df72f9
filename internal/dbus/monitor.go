package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	godbus "github.com/godbus/dbus/v5"
)

// Monitor subscribes to the MonitorsChanged signal and invokes a callback
// whenever the hardware configuration changes. The callback runs on the bus
// goroutine, so it must not block; the coordinator's Notify satisfies that.
type Monitor struct {
	conn   *godbus.Conn
	logger *slog.Logger

	mu      sync.Mutex
	signals chan *godbus.Signal
	done    chan struct{}
	running bool
}

// NewMonitor creates a hotplug monitor on the session bus.
func NewMonitor(logger *slog.Logger) (*Monitor, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{conn: conn, logger: logger}, nil
}

// Start installs the signal match and begins delivering notifications to
// the callback.
func (m *Monitor) Start(callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	if err := m.conn.AddMatchSignal(
		godbus.WithMatchInterface(displayConfigName),
		godbus.WithMatchMember(monitorsChangedSignal),
	); err != nil {
		return fmt.Errorf("adding signal match: %w", err)
	}

	m.signals = make(chan *godbus.Signal, 16)
	m.done = make(chan struct{})
	m.conn.Signal(m.signals)
	m.running = true

	go func() {
		for {
			select {
			case sig, ok := <-m.signals:
				if !ok {
					return
				}
				if sig.Name != displayConfigName+"."+monitorsChangedSignal {
					continue
				}
				m.logger.Debug("monitors changed signal received")
				callback()
			case <-m.done:
				return
			}
		}
	}()

	m.logger.Info("watching for display hardware changes")
	return nil
}

// Stop removes the signal subscription.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.done)
	m.conn.RemoveSignal(m.signals)
	return m.conn.RemoveMatchSignal(
		godbus.WithMatchInterface(displayConfigName),
		godbus.WithMatchMember(monitorsChangedSignal),
	)
}
