// Package dbus implements the display backend and hotplug notification
// source on top of the org.gnome.Mutter.DisplayConfig D-Bus interface.
package dbus

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/model"
)

const (
	displayConfigName     = "org.gnome.Mutter.DisplayConfig"
	displayConfigPath     = "/org/gnome/Mutter/DisplayConfig"
	getCurrentStateMethod = displayConfigName + ".GetCurrentState"
	applyMonitorsMethod   = displayConfigName + ".ApplyMonitorsConfig"
	monitorsChangedSignal = "MonitorsChanged"
	applyMethodTemporary  = uint32(1)
	defaultModeColorDepth = 24
)

// monitorSpec identifies one physical monitor on the bus.
type monitorSpec struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

// uuid derives the stable per-machine identifier used throughout the core.
// Connectors are stable for a given machine and port, which is all the UUID
// contract requires.
func (s monitorSpec) uuid() string {
	if s.Serial != "" && s.Serial != "unknown" {
		return strings.Join([]string{s.Vendor, s.Product, s.Serial}, "-")
	}
	return s.Connector
}

type monitorMode struct {
	ID              string
	Width           int32
	Height          int32
	RefreshRate     float64
	PreferredScale  float64
	SupportedScales []float64
	Properties      map[string]godbus.Variant
}

type monitor struct {
	Spec       monitorSpec
	Modes      []monitorMode
	Properties map[string]godbus.Variant
}

type logicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []monitorSpec
	Properties map[string]godbus.Variant
}

// Backend implements display.Backend against a mutter compositor.
type Backend struct {
	conn   *godbus.Conn
	logger *slog.Logger

	// serial of the last snapshot; ApplyMonitorsConfig requires it.
	serial uint32
	// connector lookup for translating UUIDs back to bus identities.
	connectors map[string]monitorSpec
	modeIDs    map[string]map[display.Mode]string
	// uuid anchoring the compositor's primary logical monitor.
	primary string
}

// NewBackend connects to the session bus and returns a mutter-backed
// display backend.
func NewBackend(logger *slog.Logger) (*Backend, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{conn: conn, logger: logger}, nil
}

// Snapshot queries GetCurrentState and translates it to the backend-neutral
// snapshot form.
func (b *Backend) Snapshot() (display.Snapshot, error) {
	var (
		serial          uint32
		monitors        []monitor
		logicalMonitors []logicalMonitor
		properties      map[string]godbus.Variant
	)

	obj := b.conn.Object(displayConfigName, displayConfigPath)
	call := obj.Call(getCurrentStateMethod, 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetCurrentState: %w", call.Err)
	}
	if err := call.Store(&serial, &monitors, &logicalMonitors, &properties); err != nil {
		return nil, fmt.Errorf("decoding GetCurrentState reply: %w", err)
	}

	b.serial = serial
	return b.decodeState(monitors, logicalMonitors), nil
}

// decodeState translates a GetCurrentState reply into the backend-neutral
// snapshot and refreshes the bus identity caches. Monitors not claimed by any
// logical monitor are disabled; they stay in the identity caches but are
// excluded from the snapshot, matching how the fake backend reports state.
func (b *Backend) decodeState(monitors []monitor, logicalMonitors []logicalMonitor) display.Snapshot {
	b.connectors = make(map[string]monitorSpec, len(monitors))
	b.modeIDs = make(map[string]map[display.Mode]string, len(monitors))
	b.primary = ""

	states := make(map[string]display.Display, len(monitors))
	for _, mon := range monitors {
		uuid := mon.Spec.uuid()
		b.connectors[uuid] = mon.Spec

		modes := make([]display.Mode, 0, len(mon.Modes))
		ids := make(map[display.Mode]string, len(mon.Modes))
		var current display.Mode
		for _, mm := range mon.Modes {
			mode := display.Mode{
				UUID:       uuid,
				Scaled:     mm.PreferredScale > 1,
				ColorDepth: defaultModeColorDepth,
				Frequency:  int(math.Round(mm.RefreshRate)),
				Extents:    model.Point{X: int64(mm.Width), Y: int64(mm.Height)},
			}
			modes = append(modes, mode)
			ids[mode] = mm.ID
			if v, ok := mm.Properties["is-current"]; ok {
				if isCurrent, ok := v.Value().(bool); ok && isCurrent {
					current = mode
				}
			}
		}
		b.modeIDs[uuid] = ids

		states[uuid] = display.Display{
			UUID:  uuid,
			Mode:  current,
			Modes: modes,
		}
	}

	// Logical monitors carry arrangement: origin, rotation, mirroring and
	// the primary flag. A logical monitor holding several physical monitors
	// mirrors them; the first one is treated as the mirror target. A monitor
	// claimed by no logical monitor is disabled.
	for _, lm := range logicalMonitors {
		if len(lm.Monitors) == 0 {
			continue
		}
		targetUUID := lm.Monitors[0].uuid()
		if lm.Primary {
			b.primary = targetUUID
		}
		for i, spec := range lm.Monitors {
			uuid := spec.uuid()
			d, ok := states[uuid]
			if !ok {
				continue
			}
			d.Enabled = true
			d.Origin = model.Point{X: int64(lm.X), Y: int64(lm.Y)}
			d.Rotation = transformToRotation(lm.Transform)
			if i > 0 {
				d.MirrorOf = targetUUID
			}
			states[uuid] = d
		}
	}

	snap := make(display.Snapshot, len(states))
	for uuid, d := range states {
		if d.Enabled {
			snap[uuid] = d
		}
	}
	return snap
}

// Begin opens a transaction over the snapshot. Commit translates the queued
// edits into a single ApplyMonitorsConfig call.
func (b *Backend) Begin(snap display.Snapshot) (display.Transaction, error) {
	pending := make(map[string]display.Display, len(snap))
	for uuid, d := range snap {
		pending[uuid] = d
	}
	return &transaction{backend: b, pending: pending, seen: make(map[string]bool)}, nil
}

// transaction overlays edits on the snapshot and pushes the merged state to
// mutter on commit.
type transaction struct {
	backend *Backend
	pending map[string]display.Display
	seen    map[string]bool
	closed  bool
}

func (t *transaction) edit(uuid, setting string, apply func(d *display.Display)) error {
	if t.closed {
		return display.ErrInvalidTransaction
	}
	d, ok := t.pending[uuid]
	if !ok {
		return &display.UnknownUUIDError{UUID: uuid}
	}
	key := uuid + "/" + setting
	if t.seen[key] {
		return &display.DuplicateEditError{UUID: uuid, Setting: setting}
	}
	t.seen[key] = true
	apply(&d)
	t.pending[uuid] = d
	return nil
}

func (t *transaction) SetMirroring(uuid, target string) error {
	if target != "" {
		if _, ok := t.pending[target]; !ok {
			return &display.UnknownUUIDError{UUID: target}
		}
	}
	return t.edit(uuid, "mirroring", func(d *display.Display) { d.MirrorOf = target })
}

func (t *transaction) SetMode(uuid string, mode display.Mode) error {
	if mode.UUID != "" && mode.UUID != uuid {
		return fmt.Errorf("mode for display %s used with display %s", mode.UUID, uuid)
	}
	return t.edit(uuid, "mode", func(d *display.Display) { d.Mode = mode })
}

func (t *transaction) SetRotation(uuid string, rotation model.Rotation) error {
	return t.edit(uuid, "rotation", func(d *display.Display) { d.Rotation = rotation })
}

func (t *transaction) SetOrigin(uuid string, origin model.Point) error {
	return t.edit(uuid, "origin", func(d *display.Display) { d.Origin = origin })
}

func (t *transaction) SetEnabled(uuid string, enabled bool) error {
	return t.edit(uuid, "enabled", func(d *display.Display) { d.Enabled = enabled })
}

// SetBrightness is unsupported on this backend; mutter exposes no brightness
// control through DisplayConfig.
func (t *transaction) SetBrightness(uuid string, brightness float64) error {
	if t.closed {
		return display.ErrInvalidTransaction
	}
	if _, ok := t.pending[uuid]; !ok {
		return &display.UnknownUUIDError{UUID: uuid}
	}
	return fmt.Errorf("display %s: brightness control is not supported by the mutter backend", uuid)
}

type applyMonitor struct {
	Connector  string
	ModeID     string
	Properties map[string]godbus.Variant
}

type applyLogical struct {
	X         int32
	Y         int32
	Scale     float64
	Transform uint32
	Primary   bool
	Monitors  []applyMonitor
}

func (t *transaction) Commit() error {
	if t.closed {
		return display.ErrInvalidTransaction
	}
	t.closed = true

	configs, err := t.applyConfigs()
	if err != nil {
		return err
	}

	obj := t.backend.conn.Object(displayConfigName, displayConfigPath)
	call := obj.Call(applyMonitorsMethod, 0,
		t.backend.serial, applyMethodTemporary, configs, map[string]godbus.Variant{})
	if call.Err != nil {
		return fmt.Errorf("ApplyMonitorsConfig: %w", call.Err)
	}
	return nil
}

// applyConfigs builds the ApplyMonitorsConfig payload from the pending state.
// Enabled displays group into logical monitors: mirrors join their target's
// logical monitor, everything else gets its own. The logical monitor anchored
// by the compositor's current primary keeps the primary flag; if that display
// is gone or disabled, the first logical monitor takes it.
func (t *transaction) applyConfigs() ([]applyLogical, error) {
	logical := make(map[string]*applyLogical)
	var order []string
	for _, uuid := range sortedUUIDs(t.pending) {
		d := t.pending[uuid]
		if !d.Enabled {
			continue
		}
		anchor := uuid
		if d.MirrorOf != "" {
			anchor = d.MirrorOf
		}
		spec, ok := t.backend.connectors[uuid]
		if !ok {
			return nil, &display.UnknownUUIDError{UUID: uuid}
		}
		modeID, err := t.backend.modeID(uuid, d.Mode)
		if err != nil {
			return nil, err
		}

		lm, ok := logical[anchor]
		if !ok {
			anchorState := t.pending[anchor]
			lm = &applyLogical{
				X:         int32(anchorState.Origin.X),
				Y:         int32(anchorState.Origin.Y),
				Scale:     1,
				Transform: rotationToTransform(anchorState.Rotation),
				Primary:   anchor == t.backend.primary,
			}
			logical[anchor] = lm
			order = append(order, anchor)
		}
		lm.Monitors = append(lm.Monitors, applyMonitor{
			Connector:  spec.Connector,
			ModeID:     modeID,
			Properties: map[string]godbus.Variant{},
		})
	}

	configs := make([]applyLogical, 0, len(order))
	hasPrimary := false
	for _, anchor := range order {
		if logical[anchor].Primary {
			hasPrimary = true
		}
		configs = append(configs, *logical[anchor])
	}
	if !hasPrimary && len(configs) > 0 {
		configs[0].Primary = true
	}
	return configs, nil
}

func (t *transaction) Cancel() error {
	t.closed = true
	t.pending = nil
	return nil
}

// modeID translates a backend-neutral mode back to the bus mode identifier
// recorded at snapshot time.
func (b *Backend) modeID(uuid string, mode display.Mode) (string, error) {
	ids, ok := b.modeIDs[uuid]
	if !ok {
		return "", &display.UnknownUUIDError{UUID: uuid}
	}
	if id, ok := ids[mode]; ok {
		return id, nil
	}
	return "", fmt.Errorf("display %s has no mode %dx%d@%d",
		uuid, mode.Extents.X, mode.Extents.Y, mode.Frequency)
}

func sortedUUIDs(m map[string]display.Display) []string {
	uuids := make([]string, 0, len(m))
	for uuid := range m {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)
	return uuids
}

// transformToRotation maps mutter's transform enum (rotations 0-3, flipped
// variants 4-7) onto the cardinal rotation.
func transformToRotation(transform uint32) model.Rotation {
	switch transform % 4 {
	case 1:
		return model.Rotate90
	case 2:
		return model.Rotate180
	case 3:
		return model.Rotate270
	default:
		return model.Rotate0
	}
}

func rotationToTransform(rotation model.Rotation) uint32 {
	switch rotation {
	case model.Rotate90:
		return 1
	case model.Rotate180:
		return 2
	case model.Rotate270:
		return 3
	default:
		return 0
	}
}
