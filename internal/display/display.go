// Package display defines the backend-neutral view of attached displays and
// the transactional interface used to change their state. Concrete backends
// are the in-memory fake in this package and the D-Bus backend in
// internal/dbus.
package display

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jmylchreest/screenplan/internal/model"
)

// ErrInvalidTransaction is reported when an edit or commit is attempted on a
// transaction that has already been committed or cancelled.
var ErrInvalidTransaction = errors.New("display transaction is no longer open")

// UnknownUUIDError is reported when an operation references a display that
// is not part of the snapshot the transaction was opened against.
type UnknownUUIDError struct {
	UUID string
}

func (e *UnknownUUIDError) Error() string {
	return fmt.Sprintf("attempted to configure a non-existent display with UUID %s", e.UUID)
}

// DuplicateEditError is reported when the same setting is changed more than
// once for one display within a single transaction.
type DuplicateEditError struct {
	UUID    string
	Setting string
}

func (e *DuplicateEditError) Error() string {
	return fmt.Sprintf("attempted to change %s more than once on display %s", e.Setting, e.UUID)
}

// Mode is one possible configuration state of a display.
type Mode struct {
	// UUID names the display this mode belongs to. Modes are only valid for
	// the display that reported them; this is checked dynamically when the
	// mode is applied.
	UUID       string      `json:"-" yaml:"-"`
	Scaled     bool        `json:"scaled" yaml:"scaled"`
	ColorDepth int         `json:"color_depth" yaml:"color_depth"`
	Frequency  int         `json:"frequency" yaml:"frequency"`
	Extents    model.Point `json:"extents" yaml:"extents"`
}

// Matches reports whether the mode satisfies every constraint the pattern
// sets. Unset pattern fields match anything.
func (m Mode) Matches(p model.ModePattern) bool {
	if p.Scaled != nil && *p.Scaled != m.Scaled {
		return false
	}
	if p.ColorDepth != nil && *p.ColorDepth != m.ColorDepth {
		return false
	}
	if p.Frequency != nil && *p.Frequency != m.Frequency {
		return false
	}
	if p.Extents != nil && *p.Extents != m.Extents {
		return false
	}
	return true
}

// Display is the observed state of one attached display at snapshot time.
type Display struct {
	UUID       string
	Enabled    bool
	Origin     model.Point
	Rotation   model.Rotation
	MirrorOf   string // empty when not mirroring
	Brightness *float64
	Mode       Mode
	Modes      []Mode
}

// MatchingModes returns the display's modes that satisfy the pattern.
func (d Display) MatchingModes(p model.ModePattern) []Mode {
	var matched []Mode
	for _, m := range d.Modes {
		if m.Matches(p) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Snapshot maps UUIDs to the displays attached at one point in time. UUIDs
// are stable across successive snapshots for the same physical display.
type Snapshot map[string]Display

// UUIDs returns the attached display UUIDs, sorted.
func (s Snapshot) UUIDs() []string {
	uuids := make([]string, 0, len(s))
	for uuid := range s {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)
	return uuids
}

// Transaction accumulates per-display edits and applies them atomically from
// the caller's perspective on Commit. A transaction is single-owner: it is
// driven by one logical caller and is not safe for concurrent use.
//
// Owners must guarantee that an abandoned transaction is cancelled on every
// exit path, typically with a deferred Cancel guard.
type Transaction interface {
	// SetMirroring sets the mirroring target of a display, or clears
	// mirroring when target is empty.
	SetMirroring(uuid, target string) error
	// SetMode sets the display mode. The mode must be one reported for the
	// same display.
	SetMode(uuid string, mode Mode) error
	// SetRotation sets the display rotation.
	SetRotation(uuid string, rotation model.Rotation) error
	// SetOrigin sets the upper-left corner of the display in the global
	// arrangement space.
	SetOrigin(uuid string, origin model.Point) error
	// SetEnabled enables or disables the display.
	SetEnabled(uuid string, enabled bool) error
	// SetBrightness sets the display brightness in [0.0, 1.0].
	SetBrightness(uuid string, brightness float64) error

	// Commit applies all queued edits and closes the transaction.
	Commit() error
	// Cancel discards all queued edits and closes the transaction.
	// Cancelling an already-closed transaction is a no-op.
	Cancel() error
}

// Backend is the capability that enumerates attached displays and opens
// configuration transactions against them.
type Backend interface {
	// Snapshot returns the current state of the attached displays.
	Snapshot() (Snapshot, error)
	// Begin opens a configuration transaction scoped to the given snapshot.
	Begin(snap Snapshot) (Transaction, error)
}
