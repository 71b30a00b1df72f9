package display

import (
	"fmt"
	"sync"

	"github.com/jmylchreest/screenplan/internal/model"
)

// Fake is an in-memory Backend used for tests and for exercising the
// pipeline without touching real hardware. Displays that are disabled stop
// appearing in snapshots, matching how the real enumeration APIs behave.
type Fake struct {
	mu       sync.Mutex
	displays map[string]Display
	commits  int
}

// NewFake creates a fake backend seeded with the given displays.
func NewFake(displays ...Display) *Fake {
	m := make(map[string]Display, len(displays))
	for _, d := range displays {
		m[d.UUID] = d
	}
	return &Fake{displays: m}
}

// Snapshot returns the currently enabled displays.
func (f *Fake) Snapshot() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := make(Snapshot, len(f.displays))
	for uuid, d := range f.displays {
		if d.Enabled {
			snap[uuid] = d
		}
	}
	return snap, nil
}

// Begin opens a transaction scoped to the displays in the snapshot.
func (f *Fake) Begin(snap Snapshot) (Transaction, error) {
	known := make(map[string]bool, len(snap))
	for uuid := range snap {
		known[uuid] = true
	}
	return &fakeTransaction{backend: f, known: known}, nil
}

// Commits returns how many transactions have been committed.
func (f *Fake) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Display returns the backend's current state for a display, including
// disabled ones that no longer appear in snapshots.
func (f *Fake) Display(uuid string) (Display, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.displays[uuid]
	return d, ok
}

type editKind string

const (
	editMirroring  editKind = "mirroring"
	editMode       editKind = "mode"
	editRotation   editKind = "rotation"
	editOrigin     editKind = "origin"
	editEnabled    editKind = "enabled"
	editBrightness editKind = "brightness"
)

type fakeEdit struct {
	uuid  string
	kind  editKind
	apply func(d *Display)
}

// fakeTransaction queues edits and applies them on commit. It enforces the
// shared transaction contract: unknown UUIDs and repeat edits of the same
// setting are rejected, and any operation after Commit or Cancel fails with
// ErrInvalidTransaction.
type fakeTransaction struct {
	backend *Fake
	known   map[string]bool
	edits   []fakeEdit
	seen    map[string]bool // uuid+kind pairs already edited
	closed  bool
}

func (t *fakeTransaction) record(uuid string, kind editKind, apply func(d *Display)) error {
	if t.closed {
		return ErrInvalidTransaction
	}
	if !t.known[uuid] {
		return &UnknownUUIDError{UUID: uuid}
	}
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	key := uuid + "/" + string(kind)
	if t.seen[key] {
		return &DuplicateEditError{UUID: uuid, Setting: string(kind)}
	}
	t.seen[key] = true
	t.edits = append(t.edits, fakeEdit{uuid: uuid, kind: kind, apply: apply})
	return nil
}

func (t *fakeTransaction) SetMirroring(uuid, target string) error {
	return t.record(uuid, editMirroring, func(d *Display) { d.MirrorOf = target })
}

func (t *fakeTransaction) SetMode(uuid string, mode Mode) error {
	if mode.UUID != "" && mode.UUID != uuid {
		return fmt.Errorf("mode for display %s used with display %s", mode.UUID, uuid)
	}
	return t.record(uuid, editMode, func(d *Display) { d.Mode = mode })
}

func (t *fakeTransaction) SetRotation(uuid string, rotation model.Rotation) error {
	return t.record(uuid, editRotation, func(d *Display) { d.Rotation = rotation })
}

func (t *fakeTransaction) SetOrigin(uuid string, origin model.Point) error {
	return t.record(uuid, editOrigin, func(d *Display) { d.Origin = origin })
}

func (t *fakeTransaction) SetEnabled(uuid string, enabled bool) error {
	return t.record(uuid, editEnabled, func(d *Display) { d.Enabled = enabled })
}

func (t *fakeTransaction) SetBrightness(uuid string, brightness float64) error {
	if brightness < 0.0 || brightness > 1.0 {
		return fmt.Errorf("brightness %v out of range [0.0, 1.0]", brightness)
	}
	return t.record(uuid, editBrightness, func(d *Display) { d.Brightness = &brightness })
}

func (t *fakeTransaction) Commit() error {
	if t.closed {
		return ErrInvalidTransaction
	}
	t.closed = true

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	for _, edit := range t.edits {
		d, ok := t.backend.displays[edit.uuid]
		if !ok {
			return &UnknownUUIDError{UUID: edit.uuid}
		}
		edit.apply(&d)
		t.backend.displays[edit.uuid] = d
	}
	t.backend.commits++
	return nil
}

func (t *fakeTransaction) Cancel() error {
	t.closed = true
	t.edits = nil
	return nil
}
