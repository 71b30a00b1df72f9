package valid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/screenplan/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestFromGroup_Empty(t *testing.T) {
	_, err := FromGroup(model.ConfigGroup{})
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestFromGroup_DuplicateDisplays(t *testing.T) {
	_, err := FromGroup(model.ConfigGroup{
		{UUID: "abcdef1234", Enabled: ptr(false)},
		{UUID: "abcdef1234", Enabled: ptr(false)},
	})
	var dup *DuplicateDisplaysError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"abcdef1234"}, dup.UUIDs)

	_, err = FromGroup(model.ConfigGroup{
		{UUID: "abcdef1234"},
		{UUID: "abcdef1234"},
		{UUID: "foobarbaz"},
		{UUID: "foobarbaz"},
	})
	require.ErrorAs(t, err, &dup)
	assert.ElementsMatch(t, []string{"abcdef1234", "foobarbaz"}, dup.UUIDs)
}

func TestFromGroup_InvalidMirror(t *testing.T) {
	// enabled is allowed alongside mirror_of, origin is not.
	_, err := FromGroup(model.ConfigGroup{{
		UUID:     "abcdef1234",
		MirrorOf: ptr("5678defghi"),
		Enabled:  ptr(true),
		Origin:   &model.Point{X: 0, Y: 0},
	}})
	var invalid *InvalidMirrorError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "abcdef1234", invalid.UUID)
}

func TestFromGroup_MirrorAndEnabledOnlyIsValid(t *testing.T) {
	group, err := FromGroup(model.ConfigGroup{
		{UUID: "a", MirrorOf: ptr("b"), Enabled: ptr(true)},
		{UUID: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, group.UUIDs)
}

func TestFromGroup_MirrorOfMirror(t *testing.T) {
	_, err := FromGroup(model.ConfigGroup{
		{UUID: "A", MirrorOf: ptr("B"), Enabled: ptr(true)},
		{UUID: "B", MirrorOf: ptr("C"), Enabled: ptr(true)},
		{UUID: "C", Enabled: ptr(true)},
	})
	var chain *MirrorOfMirrorError
	require.ErrorAs(t, err, &chain)
	assert.Equal(t, "A", chain.UUID)
	assert.Equal(t, "B", chain.Target)
}

func TestFromGroup_BrightnessRange(t *testing.T) {
	_, err := FromGroup(model.ConfigGroup{{UUID: "low-bright", Brightness: ptr(-0.1)}})
	var bright *BrightnessRangeError
	require.ErrorAs(t, err, &bright)
	assert.Equal(t, "low-bright", bright.UUID)
	assert.Equal(t, -0.1, bright.Value)

	_, err = FromGroup(model.ConfigGroup{{UUID: "high-bright", Brightness: ptr(1.2)}})
	require.ErrorAs(t, err, &bright)
	assert.Equal(t, "high-bright", bright.UUID)

	// Bounds are inclusive.
	_, err = FromGroup(model.ConfigGroup{{UUID: "ok", Brightness: ptr(1.0)}})
	assert.NoError(t, err)
	_, err = FromGroup(model.ConfigGroup{{UUID: "ok", Brightness: ptr(0.0)}})
	assert.NoError(t, err)
}

func TestFromGroup_UUIDSetSize(t *testing.T) {
	group, err := FromGroup(model.ConfigGroup{
		{UUID: "c"},
		{UUID: "a"},
		{UUID: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, group.UUIDs)
	assert.Len(t, group.Configs, 3)
}

func TestValidate_DuplicateGroups(t *testing.T) {
	_, err := Validate(model.ConfigGroups{
		{{UUID: "abcdef1234", Enabled: ptr(false)}},
		{{UUID: "abcdef1234", Enabled: ptr(false)}},
	})
	var dup *DuplicateGroupsError
	require.ErrorAs(t, err, &dup)
	require.Len(t, dup.Groups, 1)
	assert.Equal(t, []string{"abcdef1234"}, dup.Groups[0].UUIDs)
}

func TestValidate_DuplicateGroupsDifferentOrderAndDetails(t *testing.T) {
	// Same UUID set makes the same scene even with different field details
	// and a different authoring order.
	_, err := Validate(model.ConfigGroups{
		{{UUID: "abcdef1234", Enabled: ptr(false)}, {UUID: "foobarbaz"}},
		{{UUID: "foobarbaz", Rotation: ptr(model.Rotate90)}, {UUID: "abcdef1234"}},
	})
	var dup *DuplicateGroupsError
	require.ErrorAs(t, err, &dup)
	require.Len(t, dup.Groups, 1)
	assert.Equal(t, []string{"abcdef1234", "foobarbaz"}, dup.Groups[0].UUIDs)
}

func TestValidate_FirstStructuralViolationAborts(t *testing.T) {
	_, err := Validate(model.ConfigGroups{
		{{UUID: "fine"}},
		{},
	})
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestValidate_SortsMostPreciseFirst(t *testing.T) {
	groups, err := Validate(model.ConfigGroups{
		{{UUID: "a"}},
		{{UUID: "b"}},
		{{UUID: "c"}},
		{{UUID: "a"}, {UUID: "b"}},
		{{UUID: "a"}, {UUID: "c"}},
		{{UUID: "a"}, {UUID: "b"}, {UUID: "c"}},
	})
	require.NoError(t, err)

	var sets [][]string
	for _, g := range groups {
		sets = append(sets, g.UUIDs)
	}
	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"a", "b"},
		{"a", "c"},
		{"a"},
		{"b"},
		{"c"},
	}, sets)
}

func TestMorePrecise(t *testing.T) {
	mk := func(uuids ...string) Group {
		configs := make(map[string]model.Config, len(uuids))
		for _, u := range uuids {
			configs[u] = model.Config{UUID: u}
		}
		return Group{UUIDs: uuids, Configs: configs}
	}

	// Strict superset precedes.
	assert.True(t, MorePrecise(mk("a", "b"), mk("a")))
	assert.False(t, MorePrecise(mk("a"), mk("a", "b")))
	// Equal sets: neither precedes.
	assert.False(t, MorePrecise(mk("a"), mk("a")))
	// Incomparable: larger set precedes.
	assert.True(t, MorePrecise(mk("a", "b"), mk("c")))
	assert.False(t, MorePrecise(mk("c"), mk("a", "b")))
	// Incomparable, same size: neither precedes.
	assert.False(t, MorePrecise(mk("a"), mk("b")))
	assert.False(t, MorePrecise(mk("b"), mk("a")))
}
