package engine

import (
	"log/slog"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/valid"
)

// Engine binds a display backend to a serialization format for diagnostics.
type Engine struct {
	backend display.Backend
	format  codec.Format
	logger  *slog.Logger
}

// New creates an engine over the given backend.
func New(backend display.Backend, format codec.Format, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{backend: backend, format: format, logger: logger}
}

// Backend returns the engine's display backend.
func (e *Engine) Backend() display.Backend {
	return e.backend
}

// Reconfigure snapshots the attached displays, resolves the applicable
// group, and applies it.
func (e *Engine) Reconfigure(groups []valid.Group) error {
	snap, err := e.backend.Snapshot()
	if err != nil {
		return err
	}
	group, err := Resolve(groups, snap, e.format)
	if err != nil {
		return err
	}
	return e.Apply(snap, group)
}

// Apply configures the displays named by the resolved group through a
// single transaction. All modes are selected up front so an unsatisfiable
// configuration fails before any edit is queued. The transaction is
// cancelled on every non-commit exit path.
func (e *Engine) Apply(snap display.Snapshot, group valid.Group) error {
	// Mode selection happens for every non-mirroring display, including ones
	// about to be disabled; a config that cannot name a unique mode is
	// rejected outright.
	modes := make(map[string]display.Mode, len(group.UUIDs))
	for _, uuid := range group.UUIDs {
		config := group.Configs[uuid]
		if config.IsMirroring() {
			continue
		}
		d, ok := snap[uuid]
		if !ok {
			return &display.UnknownUUIDError{UUID: uuid}
		}
		mode, err := SelectMode(d, config, e.format)
		if err != nil {
			return err
		}
		e.logger.Info("selected display mode",
			"uuid", uuid,
			"extents", mode.Extents,
			"frequency", mode.Frequency,
			"scaled", mode.Scaled)
		modes[uuid] = mode
	}

	txn, err := e.backend.Begin(snap)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if cerr := txn.Cancel(); cerr != nil {
				e.logger.Warn("failed to cancel transaction", "error", cerr)
			}
		}
	}()

	for _, uuid := range group.UUIDs {
		config := group.Configs[uuid]

		if config.IsMirroring() {
			e.logger.Info("mirroring display", "uuid", uuid, "target", *config.MirrorOf)
			if err := txn.SetMirroring(uuid, *config.MirrorOf); err != nil {
				return err
			}
			// A mirror inherits everything from its target; only an explicit
			// disable is honored.
			if config.Enabled != nil && !*config.Enabled {
				e.logger.Info("disabling display", "uuid", uuid)
				if err := txn.SetEnabled(uuid, false); err != nil {
					return err
				}
			}
			continue
		}

		if config.Enabled != nil && !*config.Enabled {
			e.logger.Info("disabling display", "uuid", uuid)
			if err := txn.SetEnabled(uuid, false); err != nil {
				return err
			}
			// No further options are meaningful once disabled.
			continue
		}

		if err := txn.SetMirroring(uuid, ""); err != nil {
			return err
		}
		if config.Rotation != nil {
			e.logger.Info("rotating display", "uuid", uuid, "degrees", *config.Rotation)
			if err := txn.SetRotation(uuid, *config.Rotation); err != nil {
				return err
			}
		}
		if config.Brightness != nil {
			e.logger.Info("setting brightness", "uuid", uuid, "brightness", *config.Brightness)
			if err := txn.SetBrightness(uuid, *config.Brightness); err != nil {
				return err
			}
		}
		if err := txn.SetMode(uuid, modes[uuid]); err != nil {
			return err
		}
		if config.Origin != nil {
			e.logger.Info("moving display", "uuid", uuid, "origin", *config.Origin)
			if err := txn.SetOrigin(uuid, *config.Origin); err != nil {
				return err
			}
		}
	}

	if err := txn.Commit(); err != nil {
		return err
	}
	committed = true
	e.logger.Info("configuration complete")
	return nil
}
