package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/model"
)

func TestApplyConfiguresDisplays(t *testing.T) {
	fake := display.NewFake(testDisplay("a"), testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Origin: &model.Point{X: 0, Y: 0}, Rotation: ptr(model.Rotate90), Frequency: ptr(120), Brightness: ptr(0.8)},
		{UUID: "b", Origin: &model.Point{X: 1920, Y: 0}, Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	require.NoError(t, eng.Apply(snap, groups[0]))
	assert.Equal(t, 1, fake.Commits())

	a, _ := fake.Display("a")
	assert.Equal(t, model.Rotate90, a.Rotation)
	assert.Equal(t, 120, a.Mode.Frequency)
	require.NotNil(t, a.Brightness)
	assert.Equal(t, 0.8, *a.Brightness)

	b, _ := fake.Display("b")
	assert.Equal(t, model.Point{X: 1920, Y: 0}, b.Origin)
	assert.Equal(t, 120, b.Mode.Frequency)
}

func TestApplyMirroring(t *testing.T) {
	fake := display.NewFake(testDisplay("a"), testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", MirrorOf: ptr("b"), Enabled: ptr(true)},
		{UUID: "b", Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	require.NoError(t, eng.Apply(snap, groups[0]))

	a, _ := fake.Display("a")
	assert.Equal(t, "b", a.MirrorOf)
	// The mirror inherits its state from the target; only uuid and
	// mirror_of were applied.
	assert.Equal(t, 60, a.Mode.Frequency)
}

func TestApplyClearsStaleMirroring(t *testing.T) {
	wasMirroring := testDisplay("a")
	wasMirroring.MirrorOf = "b"
	fake := display.NewFake(wasMirroring, testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Frequency: ptr(120)},
		{UUID: "b", Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	require.NoError(t, eng.Apply(snap, groups[0]))

	a, _ := fake.Display("a")
	assert.Empty(t, a.MirrorOf)
}

func TestApplyDisableSkipsOtherSettings(t *testing.T) {
	fake := display.NewFake(testDisplay("a"), testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	// The disabled display still needs a unique mode match, but the mode is
	// never applied.
	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Enabled: ptr(false), Frequency: ptr(120), Rotation: ptr(model.Rotate180)},
		{UUID: "b", Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	require.NoError(t, eng.Apply(snap, groups[0]))

	a, _ := fake.Display("a")
	assert.False(t, a.Enabled)
	assert.Equal(t, 60, a.Mode.Frequency)
	assert.Equal(t, model.Rotate0, a.Rotation)
}

func TestApplyDisabledDisplayStillNeedsUniqueMode(t *testing.T) {
	fake := display.NewFake(testDisplay("a"), testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Enabled: ptr(false)},
		{UUID: "b", Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	err = eng.Apply(snap, groups[0])
	var ambiguous *AmbiguousModeError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "a", ambiguous.UUID)
	assert.Equal(t, 0, fake.Commits())
}

func TestApplyUnknownDisplay(t *testing.T) {
	fake := display.NewFake(testDisplay("a"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Frequency: ptr(120)},
		{UUID: "ghost", Frequency: ptr(120)},
	}})

	snap, err := fake.Snapshot()
	require.NoError(t, err)
	err = eng.Apply(snap, groups[0])
	var unknown *display.UnknownUUIDError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.UUID)
	assert.Equal(t, 0, fake.Commits())
}

// failingBackend wraps the fake backend with a transaction that fails on
// SetOrigin, to exercise the cancel-on-error path.
type failingBackend struct {
	*display.Fake
	cancelled bool
}

func (b *failingBackend) Begin(snap display.Snapshot) (display.Transaction, error) {
	txn, err := b.Fake.Begin(snap)
	if err != nil {
		return nil, err
	}
	return &failingTransaction{Transaction: txn, backend: b}, nil
}

type failingTransaction struct {
	display.Transaction
	backend *failingBackend
}

func (t *failingTransaction) SetOrigin(uuid string, origin model.Point) error {
	return errors.New("origin rejected")
}

func (t *failingTransaction) Cancel() error {
	t.backend.cancelled = true
	return t.Transaction.Cancel()
}

func TestApplyCancelsOnFailure(t *testing.T) {
	backend := &failingBackend{Fake: display.NewFake(testDisplay("a"))}
	eng := New(backend, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{{
		{UUID: "a", Origin: &model.Point{X: 10, Y: 10}, Frequency: ptr(120)},
	}})

	snap, err := backend.Snapshot()
	require.NoError(t, err)
	err = eng.Apply(snap, groups[0])
	assert.ErrorContains(t, err, "origin rejected")
	assert.True(t, backend.cancelled)
	assert.Equal(t, 0, backend.Commits())

	a, _ := backend.Display("a")
	assert.Equal(t, 60, a.Mode.Frequency)
}

func TestReconfigure(t *testing.T) {
	fake := display.NewFake(testDisplay("a"), testDisplay("b"))
	eng := New(fake, codec.JSON, nil)

	groups := mustValidate(t, model.ConfigGroups{
		{{UUID: "a", Rotation: ptr(model.Rotate270), Frequency: ptr(120)}},
		{
			{UUID: "a", Frequency: ptr(120)},
			{UUID: "b", Rotation: ptr(model.Rotate90), Frequency: ptr(120)},
		},
	})

	require.NoError(t, eng.Reconfigure(groups))

	// Both displays are attached, so the two-display group wins over the
	// one-display group.
	a, _ := fake.Display("a")
	assert.Equal(t, model.Rotate0, a.Rotation)
	b, _ := fake.Display("b")
	assert.Equal(t, model.Rotate90, b.Rotation)
}

func TestSnapshotGroups(t *testing.T) {
	d := testDisplay("a")
	d.Origin = model.Point{X: 100, Y: 0}
	d.Rotation = model.Rotate90
	mirror := testDisplay("m")
	mirror.MirrorOf = "a"

	groups := SnapshotGroups(display.Snapshot{"a": d, "m": mirror})
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)

	config := groups[0][0]
	assert.Equal(t, "a", config.UUID)
	require.NotNil(t, config.Origin)
	assert.Equal(t, model.Point{X: 100, Y: 0}, *config.Origin)
	require.NotNil(t, config.Rotation)
	assert.Equal(t, model.Rotate90, *config.Rotation)
	require.NotNil(t, config.Extents)
	assert.Equal(t, model.Point{X: 1920, Y: 1080}, *config.Extents)
	assert.Nil(t, config.MirrorOf)

	mirrored := groups[0][1]
	assert.Equal(t, "m", mirrored.UUID)
	require.NotNil(t, mirrored.MirrorOf)
	assert.Equal(t, "a", *mirrored.MirrorOf)
	assert.Nil(t, mirrored.Enabled)
	assert.Nil(t, mirrored.Extents)
}

func TestSnapshotModes(t *testing.T) {
	lists := SnapshotModes(testSnapshot("b", "a"))
	require.Len(t, lists, 2)
	assert.Equal(t, "a", lists[0].UUID)
	assert.Equal(t, "b", lists[1].UUID)
	assert.Len(t, lists[0].Modes, 3)
}
