// Package resources embeds the bundled UI sequences and preset attack scripts.
package resources

import "embed"

// SequenceFiles holds sequences/*.yaml.
//
//go:embed sequences/*.yaml
var SequenceFiles embed.FS

// PresetFiles holds presets/*.json, the read-only attack scripts.
//
//go:embed presets/*.json
var PresetFiles embed.FS
