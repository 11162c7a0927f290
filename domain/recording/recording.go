// Package recording defines recorded touch scripts and their gesture summary.
package recording

import (
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is the version written by this package.
const SchemaVersion = 2

// legacySchemaVersion marks files made of bare tap/hold samples.
const legacySchemaVersion = 1

// ErrUnsupportedSchema is returned for recordings written by a newer format.
var ErrUnsupportedSchema = errors.New("unsupported recording schema version")

// ActionType is the kind of a raw touch sample.
type ActionType string

const (
	ActionDown ActionType = "down"
	ActionMove ActionType = "move"
	ActionUp   ActionType = "up"
	// ActionTap and ActionHold are single-sample legacy actions.
	ActionTap  ActionType = "tap"
	ActionHold ActionType = "hold"
)

// TouchAction is a single input sample in script space.
type TouchAction struct {
	Type        ActionType `json:"type"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
	TimestampMs int64      `json:"timestampMs"`
	HoldMs      int64      `json:"holdMs"`
}

// Metadata describes a saved recording.
type Metadata struct {
	Name            string  `json:"name"`
	Created         int64   `json:"created"`
	DurationMs      int64   `json:"duration_ms"`
	DurationSeconds float64 `json:"duration_seconds"`
	TotalActions    int     `json:"total_actions"`
	SchemaVersion   int     `json:"schema_version"`
}

// Recording is an immutable recorded attack script.
type Recording struct {
	Metadata Metadata      `json:"metadata"`
	Actions  []TouchAction `json:"actions"`
}

// New wraps actions with metadata. The duration is the largest timestamp.
func New(name string, created time.Time, actions []TouchAction) *Recording {
	var duration int64
	for _, a := range actions {
		if a.TimestampMs > duration {
			duration = a.TimestampMs
		}
	}
	copied := make([]TouchAction, len(actions))
	copy(copied, actions)

	return &Recording{
		Metadata: Metadata{
			Name:            name,
			Created:         created.UnixMilli(),
			DurationMs:      duration,
			DurationSeconds: float64(duration) / 1000.0,
			TotalActions:    len(actions),
			SchemaVersion:   SchemaVersion,
		},
		Actions: copied,
	}
}

// Validate checks that the recording can be replayed by this version.
// Files without a schema_version predate versioning and are read as legacy.
func (r *Recording) Validate() error {
	switch v := r.Metadata.SchemaVersion; v {
	case 0, legacySchemaVersion, SchemaVersion:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, v)
	}
	for i, a := range r.Actions {
		switch a.Type {
		case ActionDown, ActionMove, ActionUp, ActionTap, ActionHold:
		default:
			return fmt.Errorf("action %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}

// Info is the listing entry for a stored recording.
type Info struct {
	Name     string
	Path     string
	Duration float64
	Actions  int
	Source   Source
}

// Source identifies where a recording is stored.
type Source string

const (
	SourceStorage Source = "storage"
	SourcePreset  Source = "preset"
)
