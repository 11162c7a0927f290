package scriptstore

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocbot-go/domain/recording"
)

var fixedNow = time.UnixMilli(1_735_689_600_000)

func newTestStore(t *testing.T, presets fstest.MapFS) *Store {
	t.Helper()
	cfg := &Config{
		Dir: t.TempDir(),
		Now: func() time.Time { return fixedNow },
	}
	if presets != nil {
		cfg.Presets = presets
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t, nil)
	actions := []recording.TouchAction{
		{Type: recording.ActionDown, X: 100, Y: 200, TimestampMs: 0},
		{Type: recording.ActionMove, X: 150, Y: 210, TimestampMs: 120},
		{Type: recording.ActionUp, X: 180, Y: 220, TimestampMs: 300},
		{Type: recording.ActionHold, X: 480, Y: 270, TimestampMs: 900, HoldMs: 400},
	}

	p, err := s.Save("Attack", actions)
	require.NoError(t, err)
	assert.Equal(t, "Attack_1735689600000.json", filepath.Base(p))

	rec := s.Load(p)
	require.NotNil(t, rec)
	assert.Equal(t, actions, rec.Actions)
	assert.Equal(t, len(actions), rec.Metadata.TotalActions)
	assert.Equal(t, int64(900), rec.Metadata.DurationMs)
	assert.Equal(t, "Attack_1735689600000", rec.Metadata.Name)
	assert.Equal(t, recording.SchemaVersion, rec.Metadata.SchemaVersion)
}

func TestStore_SaveEmpty(t *testing.T) {
	s := newTestStore(t, nil)
	p, err := s.Save("Empty", nil)
	require.NoError(t, err)

	rec := s.Load(p)
	require.NotNil(t, rec)
	assert.Equal(t, int64(0), rec.Metadata.DurationMs)
	assert.Equal(t, 0, rec.Metadata.TotalActions)
	assert.Empty(t, recording.Summarize(rec.Actions))
}

func TestStore_SaveNeverOverwrites(t *testing.T) {
	s := newTestStore(t, nil)
	first, err := s.Save("Attack", []recording.TouchAction{{Type: recording.ActionTap, X: 1, Y: 1}})
	require.NoError(t, err)
	second, err := s.Save("Attack", []recording.TouchAction{{Type: recording.ActionTap, X: 2, Y: 2}})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, s.Load(first).Actions[0].X)
	assert.Equal(t, 2, s.Load(second).Actions[0].X)
}

func TestStore_LoadFailuresReturnNil(t *testing.T) {
	s := newTestStore(t, nil)
	dir := s.Dir()

	malformed := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0o644))

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"metadata":{"name":"f","schema_version":9},"actions":[]}`), 0o644))

	assert.Nil(t, s.Load(filepath.Join(dir, "missing.json")))
	assert.Nil(t, s.Load(malformed))
	assert.Nil(t, s.Load(future))
	assert.Nil(t, s.Load(PresetPrefix+"anything.json"), "no presets configured")
}

func TestStore_ListAll(t *testing.T) {
	presets := fstest.MapFS{
		"presets/a.json":    {Data: []byte(`{"metadata":{"name":"Zulu","duration_seconds":2.5,"total_actions":1,"schema_version":2},"actions":[{"type":"tap","x":1,"y":1,"timestampMs":0,"holdMs":0}]}`)},
		"presets/dup.json":  {Data: []byte(`{"metadata":{"name":"Attack_1735689600000","total_actions":0,"schema_version":2},"actions":[]}`)},
		"presets/notes.txt": {Data: []byte("skip")},
		"presets/bad.json":  {Data: []byte("garbage")},
	}
	s := newTestStore(t, presets)

	_, err := s.Save("Attack", nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "ignored.txt"), []byte("x"), 0o644))

	list := s.ListAll()
	require.Len(t, list, 3)

	assert.Equal(t, "Zulu", list[0].Name)
	assert.Equal(t, recording.SourcePreset, list[0].Source)
	assert.Equal(t, PresetPrefix+"a.json", list[0].Path)
	assert.InDelta(t, 2.5, list[0].Duration, 1e-9)

	assert.Equal(t, "Attack_1735689600000", list[1].Name)
	assert.Equal(t, "Attack_1735689600000", list[2].Name)
	sources := map[recording.Source]bool{list[1].Source: true, list[2].Source: true}
	assert.True(t, sources[recording.SourceStorage] && sources[recording.SourcePreset], "duplicates from both sources are kept")

	rec := s.Load(list[0].Path)
	require.NotNil(t, rec)
	assert.Len(t, rec.Actions, 1)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Attack", sanitizeName("  "))
	assert.Equal(t, "a_b_c", sanitizeName("a/b:c"))
}
