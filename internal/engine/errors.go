package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoConfigGroups is reported when the parsed input contains no
// configuration groups at all. Daemon mode requires at least one.
var ErrNoConfigGroups = errors.New("the parsed input contains no configuration groups")

// NoMatchingGroupError is reported when no configuration group is feasible
// for the currently attached displays.
type NoMatchingGroupError struct {
	Attached []string
}

func (e *NoMatchingGroupError) Error() string {
	return fmt.Sprintf("no configuration group matches these currently attached displays: %s",
		strings.Join(e.Attached, ", "))
}

// AmbiguousGroupError is reported when more than one feasible configuration
// group of the winning size exists. Groups holds the serialized forms of the
// colliding groups.
type AmbiguousGroupError struct {
	Groups []string
}

func (e *AmbiguousGroupError) Error() string {
	return fmt.Sprintf("ambiguous choice of configuration groups: %s", strings.Join(e.Groups, " "))
}

// NoMatchingModeError is reported when a display has no mode matching the
// configured constraints. Config holds the serialized offending config.
type NoMatchingModeError struct {
	UUID   string
	Config string
}

func (e *NoMatchingModeError) Error() string {
	return fmt.Sprintf("no display mode matches the given configuration for %s: %s", e.UUID, e.Config)
}

// AmbiguousModeError is reported when a configuration under-constrains a
// display and several modes match. Modes holds the serialized candidates.
type AmbiguousModeError struct {
	UUID  string
	Modes []string
}

func (e *AmbiguousModeError) Error() string {
	return fmt.Sprintf("ambiguous choice of display mode for %s: %s", e.UUID, strings.Join(e.Modes, " "))
}
