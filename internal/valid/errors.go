package valid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyGroup is reported when a configuration group contains no displays.
var ErrEmptyGroup = errors.New("configuration group is empty")

// DuplicateDisplaysError is reported when a configuration group contains the
// same display UUID more than once.
type DuplicateDisplaysError struct {
	UUIDs []string
}

func (e *DuplicateDisplaysError) Error() string {
	return fmt.Sprintf(
		"configuration group contains a configuration for the same display more than once: %s",
		strings.Join(e.UUIDs, ", "))
}

// InvalidMirrorError is reported when a display with mirror_of set also has
// other display options set, which are not compatible with mirroring.
type InvalidMirrorError struct {
	UUID string
}

func (e *InvalidMirrorError) Error() string {
	return fmt.Sprintf(
		"display %s has mirror_of set but also has other display options set, "+
			"which are not compatible with mirroring", e.UUID)
}

// MirrorOfMirrorError is reported when a display mirrors a display that is
// itself mirroring another display.
type MirrorOfMirrorError struct {
	UUID   string
	Target string
}

func (e *MirrorOfMirrorError) Error() string {
	return fmt.Sprintf(
		"display %s is configured to mirror display %s, which is itself already mirroring another display",
		e.UUID, e.Target)
}

// BrightnessRangeError is reported when a brightness value lies outside the
// allowed range [0.0, 1.0].
type BrightnessRangeError struct {
	UUID  string
	Value float64
}

func (e *BrightnessRangeError) Error() string {
	return fmt.Sprintf(
		"display %s has invalid brightness %v, brightness must be between 0.0 and 1.0",
		e.UUID, e.Value)
}

// DuplicateGroupsError is reported when multiple configuration groups name
// the exact same set of displays.
type DuplicateGroupsError struct {
	Groups []Group
}

func (e *DuplicateGroupsError) Error() string {
	sets := make([]string, 0, len(e.Groups))
	for _, g := range e.Groups {
		sets = append(sets, "["+strings.Join(g.UUIDs, ", ")+"]")
	}
	return fmt.Sprintf(
		"there are multiple configuration groups with the same set of displays: %s",
		strings.Join(sets, " "))
}
