// Package model defines the core data structures for screenplan: the
// desired-state records read from user configuration and the derived
// mode-matching pattern.
package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config describes the desired state of a single display. Every field other
// than UUID is optional; a nil field means "leave unchanged".
//
// In addition to the mapping form, a config may be written as a list
// shorthand: [uuid], [uuid, mirror_of] or [uuid, mirror_of, enabled].
type Config struct {
	UUID       string    `json:"uuid" yaml:"uuid"`
	MirrorOf   *string   `json:"mirror_of,omitempty" yaml:"mirror_of,omitempty"`
	Enabled    *bool     `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Origin     *Point    `json:"origin,omitempty" yaml:"origin,omitempty"`
	Extents    *Point    `json:"extents,omitempty" yaml:"extents,omitempty"`
	Scaled     *bool     `json:"scaled,omitempty" yaml:"scaled,omitempty"`
	Frequency  *int      `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	ColorDepth *int      `json:"color_depth,omitempty" yaml:"color_depth,omitempty"`
	Rotation   *Rotation `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Brightness *float64  `json:"brightness,omitempty" yaml:"brightness,omitempty"`
}

// IsMirroring reports whether this config requests mirroring another display.
func (c *Config) IsMirroring() bool {
	return c.MirrorOf != nil
}

// ModePattern returns the display-mode constraints this config imposes.
func (c *Config) ModePattern() ModePattern {
	return ModePattern{
		Scaled:     c.Scaled,
		ColorDepth: c.ColorDepth,
		Frequency:  c.Frequency,
		Extents:    c.Extents,
	}
}

// configAlias avoids recursing back into the custom unmarshalers.
type configAlias Config

// UnmarshalJSON accepts both the mapping form and the list shorthand.
func (c *Config) UnmarshalJSON(data []byte) error {
	if isListForm(data) {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		return c.fromList(len(items), func(i int, dst any) error {
			return json.Unmarshal(items[i], dst)
		})
	}

	var alias configAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = Config(alias)
	return nil
}

// UnmarshalYAML accepts both the mapping form and the list shorthand.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return c.fromList(len(value.Content), func(i int, dst any) error {
			return value.Content[i].Decode(dst)
		})
	}

	var alias configAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*c = Config(alias)
	return nil
}

// fromList populates the config from the positional shorthand
// [uuid, mirror_of, enabled] where trailing elements are optional.
func (c *Config) fromList(n int, decode func(i int, dst any) error) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("config shorthand expects 1 to 3 elements, got %d", n)
	}

	out := Config{}
	if err := decode(0, &out.UUID); err != nil {
		return fmt.Errorf("config shorthand uuid: %w", err)
	}
	if n > 1 {
		var mirror string
		if err := decode(1, &mirror); err != nil {
			return fmt.Errorf("config shorthand mirror_of: %w", err)
		}
		out.MirrorOf = &mirror
	}
	if n > 2 {
		var enabled bool
		if err := decode(2, &enabled); err != nil {
			return fmt.Errorf("config shorthand enabled: %w", err)
		}
		out.Enabled = &enabled
	}

	*c = out
	return nil
}

// isListForm reports whether the raw JSON value starts with '['.
func isListForm(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// ConfigGroup is one complete desired arrangement ("scene") for some subset
// of displays. It serializes transparently as a list of configs.
type ConfigGroup []Config

// ConfigGroups is a collection of alternative scenes. Order carries no
// meaning beyond being preserved on round-trips.
type ConfigGroups []ConfigGroup

// ModePattern specifies the space of acceptable display modes derived from a
// Config. Nil fields match any value. Patterns are matching-only and never
// persisted.
type ModePattern struct {
	Scaled     *bool
	ColorDepth *int
	Frequency  *int
	Extents    *Point
}

// IsEmpty reports whether the pattern constrains nothing.
func (p ModePattern) IsEmpty() bool {
	return p.Scaled == nil && p.ColorDepth == nil && p.Frequency == nil && p.Extents == nil
}
