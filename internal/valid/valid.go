// Package valid converts raw configuration groups into an indexed,
// semantically consistent form. A validated group has no duplicate displays,
// is non-empty, and satisfies the mirroring and brightness invariants.
package valid

import (
	"sort"
	"strings"

	"github.com/jmylchreest/screenplan/internal/model"
)

// Group is a validated view of a model.ConfigGroup: the sorted set of UUIDs
// it names and a mapping from UUID to its config. Two groups are considered
// the same scene iff they name the same UUID set, regardless of the
// per-display details.
type Group struct {
	// UUIDs is the set of displays named by the group, sorted.
	UUIDs []string
	// Configs maps each UUID to its desired configuration.
	Configs map[string]model.Config
}

// Key returns a canonical identity for the group's UUID set, usable as a map
// key for duplicate-scene detection.
func (g Group) Key() string {
	return strings.Join(g.UUIDs, "\x00")
}

// Contains reports whether the group names the given display.
func (g Group) Contains(uuid string) bool {
	_, ok := g.Configs[uuid]
	return ok
}

// ConfigGroup converts the validated group back to its raw form, with the
// configs in UUID order.
func (g Group) ConfigGroup() model.ConfigGroup {
	cg := make(model.ConfigGroup, 0, len(g.UUIDs))
	for _, uuid := range g.UUIDs {
		cg = append(cg, g.Configs[uuid])
	}
	return cg
}

// FromGroup builds a validated Group from a raw configuration group,
// enforcing the per-group invariants.
func FromGroup(cg model.ConfigGroup) (Group, error) {
	configs := make(map[string]model.Config, len(cg))
	var duplicates []string

	for _, config := range cg {
		// When mirroring, only uuid, mirror_of and enabled may be set.
		if config.IsMirroring() {
			if config.Origin != nil || config.Extents != nil || config.Scaled != nil ||
				config.Frequency != nil || config.ColorDepth != nil ||
				config.Rotation != nil || config.Brightness != nil {
				return Group{}, &InvalidMirrorError{UUID: config.UUID}
			}
		}

		if config.Brightness != nil {
			b := *config.Brightness
			if b < 0.0 || b > 1.0 {
				return Group{}, &BrightnessRangeError{UUID: config.UUID, Value: b}
			}
		}

		if _, seen := configs[config.UUID]; seen {
			if !contains(duplicates, config.UUID) {
				duplicates = append(duplicates, config.UUID)
			}
			continue
		}
		configs[config.UUID] = config
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return Group{}, &DuplicateDisplaysError{UUIDs: duplicates}
	}
	if len(configs) == 0 {
		return Group{}, ErrEmptyGroup
	}

	// A display may not mirror a display that is itself mirroring.
	for uuid, config := range configs {
		if !config.IsMirroring() {
			continue
		}
		if target, ok := configs[*config.MirrorOf]; ok && target.IsMirroring() {
			return Group{}, &MirrorOfMirrorError{UUID: uuid, Target: *config.MirrorOf}
		}
	}

	uuids := make([]string, 0, len(configs))
	for uuid := range configs {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	return Group{UUIDs: uuids, Configs: configs}, nil
}

// Validate converts every raw configuration group, rejects groups that name
// the same scene twice, and returns the result sorted most precise first.
func Validate(cgs model.ConfigGroups) ([]Group, error) {
	seen := make(map[string]int, len(cgs))
	var groups []Group
	var duplicates []Group

	for _, cg := range cgs {
		group, err := FromGroup(cg)
		if err != nil {
			return nil, err
		}
		key := group.Key()
		if _, ok := seen[key]; ok {
			if !containsKey(duplicates, key) {
				duplicates = append(duplicates, group)
			}
			continue
		}
		seen[key] = len(groups)
		groups = append(groups, group)
	}

	if len(duplicates) > 0 {
		return nil, &DuplicateGroupsError{Groups: duplicates}
	}

	SortByPrecision(groups)
	return groups, nil
}

// SortByPrecision orders groups most precise first using MorePrecise.
func SortByPrecision(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return MorePrecise(groups[i], groups[j])
	})
}

// MorePrecise is the sorting comparator for validated groups. A group whose
// UUID set is a strict superset of another's precedes it; incomparable
// groups are ordered by descending set size. The relation is not a true
// total order over all inputs, but is sufficient for precision sorting.
// Sortedness must never be taken to imply distinctness; duplicate scenes are
// detected separately by UUID-set equality.
func MorePrecise(a, b Group) bool {
	aSuper := isSuperset(a, b)
	bSuper := isSuperset(b, a)
	switch {
	case aSuper && bSuper:
		return false
	case aSuper:
		return true
	case bSuper:
		return false
	default:
		return len(a.UUIDs) > len(b.UUIDs)
	}
}

// isSuperset reports whether a names every display b names.
func isSuperset(a, b Group) bool {
	for _, uuid := range b.UUIDs {
		if !a.Contains(uuid) {
			return false
		}
	}
	return true
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func containsKey(groups []Group, key string) bool {
	for _, g := range groups {
		if g.Key() == key {
			return true
		}
	}
	return false
}
