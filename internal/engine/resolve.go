// Package engine drives one configuration pass: resolving which validated
// group applies to the attached displays, selecting an unambiguous mode per
// display, and applying the result through a backend transaction.
package engine

import (
	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/model"
	"github.com/jmylchreest/screenplan/internal/valid"
)

// Resolve selects the single most applicable configuration group for the
// attached displays. A group is feasible iff every display it names is
// attached; attached displays it does not name are left unmanaged. Among
// feasible groups the one naming the most displays wins. Zero feasible
// groups or a tie at the winning size is an error; a partially applicable
// guess is never applied.
func Resolve(groups []valid.Group, snap display.Snapshot, format codec.Format) (valid.Group, error) {
	bestLen := 0
	var matching []valid.Group

	for _, group := range groups {
		n := len(group.UUIDs)
		if n > len(snap) || n < bestLen {
			continue
		}
		if !feasible(group, snap) {
			continue
		}
		if n > bestLen {
			matching = matching[:0]
			bestLen = n
		}
		matching = append(matching, group)
	}

	if bestLen == 0 {
		return valid.Group{}, &NoMatchingGroupError{Attached: snap.UUIDs()}
	}
	if len(matching) > 1 {
		serialized := make([]string, 0, len(matching))
		for _, g := range matching {
			s, err := codec.EncodeToString(format, g.ConfigGroup())
			if err != nil {
				return valid.Group{}, err
			}
			serialized = append(serialized, s)
		}
		return valid.Group{}, &AmbiguousGroupError{Groups: serialized}
	}
	return matching[0], nil
}

func feasible(group valid.Group, snap display.Snapshot) bool {
	for _, uuid := range group.UUIDs {
		if _, ok := snap[uuid]; !ok {
			return false
		}
	}
	return true
}

// SelectMode picks the single display mode satisfying the config's
// constraints. Zero matches or more than one match is an error; mirrored
// configs must never reach mode selection.
func SelectMode(d display.Display, config model.Config, format codec.Format) (display.Mode, error) {
	matched := d.MatchingModes(config.ModePattern())
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		s, err := codec.EncodeToString(format, config)
		if err != nil {
			return display.Mode{}, err
		}
		return display.Mode{}, &NoMatchingModeError{UUID: d.UUID, Config: s}
	default:
		serialized := make([]string, 0, len(matched))
		for _, m := range matched {
			s, err := codec.EncodeToString(format, m)
			if err != nil {
				return display.Mode{}, err
			}
			serialized = append(serialized, s)
		}
		return display.Mode{}, &AmbiguousModeError{UUID: d.UUID, Modes: serialized}
	}
}
