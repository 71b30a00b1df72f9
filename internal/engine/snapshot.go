package engine

import (
	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/model"
)

// SnapshotGroups converts the current display state into a single
// configuration group, so pipeline output can be fed straight back in as
// desired-state input. A mirroring display is reduced to its uuid and
// mirror_of; everything else it shows is inherited from the target.
func SnapshotGroups(snap display.Snapshot) model.ConfigGroups {
	group := make(model.ConfigGroup, 0, len(snap))
	for _, uuid := range snap.UUIDs() {
		d := snap[uuid]
		config := model.Config{UUID: uuid}

		if d.MirrorOf != "" {
			mirror := d.MirrorOf
			config.MirrorOf = &mirror
		} else {
			enabled := d.Enabled
			origin := d.Origin
			extents := d.Mode.Extents
			scaled := d.Mode.Scaled
			frequency := d.Mode.Frequency
			depth := d.Mode.ColorDepth
			rotation := d.Rotation

			config.Enabled = &enabled
			config.Origin = &origin
			config.Extents = &extents
			config.Scaled = &scaled
			config.Frequency = &frequency
			config.ColorDepth = &depth
			config.Rotation = &rotation
			config.Brightness = d.Brightness
		}

		group = append(group, config)
	}

	return model.ConfigGroups{group}
}

// ModeList pairs a display with its available modes for list output.
type ModeList struct {
	UUID  string         `json:"uuid" yaml:"uuid"`
	Modes []display.Mode `json:"modes" yaml:"modes"`
}

// SnapshotModes collects every display's available modes, sorted by UUID.
func SnapshotModes(snap display.Snapshot) []ModeList {
	lists := make([]ModeList, 0, len(snap))
	for _, uuid := range snap.UUIDs() {
		lists = append(lists, ModeList{UUID: uuid, Modes: snap[uuid].Modes})
	}
	return lists
}
