// Package scriptstore persists recorded attack scripts as JSON files and
// serves the bundled read-only presets.
package scriptstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cocbot-go/domain/recording"
)

// PresetPrefix marks a path that refers to a bundled preset.
const PresetPrefix = "preset:"

// Config holds configuration for a Store.
type Config struct {
	// Dir is the directory for user recordings.
	Dir string
	// Presets is the read-only preset filesystem. May be nil.
	Presets fs.FS
	// PresetDir is the directory inside Presets holding *.json files.
	PresetDir string
	Logger    *slog.Logger
	// Now is the clock used for file names. Defaults to time.Now.
	Now func() time.Time
}

// DefaultRecordingsDir returns the default directory for user recordings.
func DefaultRecordingsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cocbot", "attack_recordings")
}

// Store saves, loads and lists attack recordings.
type Store struct {
	dir       string
	presets   fs.FS
	presetDir string
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
}

// New creates a store, creating the recordings directory if needed.
func New(cfg *Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultRecordingsDir()
	}
	if cfg.PresetDir == "" {
		cfg.PresetDir = "presets"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	return &Store{
		dir:       cfg.Dir,
		presets:   cfg.Presets,
		presetDir: cfg.PresetDir,
		logger:    cfg.Logger.With("component", "scriptstore"),
		now:       cfg.Now,
	}, nil
}

// Dir returns the user recordings directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a new recording named "<name>_<unixms>.json" and returns its path.
// Existing files are never overwritten.
func (s *Store) Save(name string, actions []recording.TouchAction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := sanitizeName(name)
	created := s.now()

	for attempt := 0; attempt < 100; attempt++ {
		stamp := created.Add(time.Duration(attempt) * time.Millisecond)
		fullName := fmt.Sprintf("%s_%d", base, stamp.UnixMilli())
		rec := recording.New(fullName, stamp, actions)

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode recording: %w", err)
		}

		filePath := filepath.Join(s.dir, fullName+".json")
		f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create recording file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			_ = os.Remove(filePath)
			return "", fmt.Errorf("failed to write recording: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close recording: %w", err)
		}

		s.logger.Info("Recording saved", "path", filePath, "actions", len(actions))
		return filePath, nil
	}
	return "", fmt.Errorf("failed to find a free file name for %s", base)
}

// Load reads a recording from storage or, for PresetPrefix paths, from the
// presets. It returns nil when the file is missing, malformed or of an
// unsupported schema version.
func (s *Store) Load(p string) *recording.Recording {
	var data []byte
	var err error

	if name, ok := strings.CutPrefix(p, PresetPrefix); ok {
		if s.presets == nil {
			s.logger.Warn("No presets available", "path", p)
			return nil
		}
		data, err = fs.ReadFile(s.presets, path.Join(s.presetDir, name))
	} else {
		data, err = os.ReadFile(p)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Recording not found", "path", p)
		} else {
			s.logger.Error("Failed to read recording", "path", p, "error", err)
		}
		return nil
	}

	rec, err := decode(data)
	if err != nil {
		s.logger.Error("Failed to load recording", "path", p, "error", err)
		return nil
	}
	return rec
}

func decode(data []byte) (*recording.Recording, error) {
	var rec recording.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse recording: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAll returns storage recordings and presets sorted by name descending.
// Recordings with the same name in both sources are both listed.
func (s *Store) ListAll() []recording.Info {
	var storage, presets []recording.Info

	var g errgroup.Group
	g.Go(func() error {
		storage = s.listStorage()
		return nil
	})
	g.Go(func() error {
		presets = s.listPresets()
		return nil
	})
	_ = g.Wait()

	all := append(storage, presets...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Name > all[j].Name
	})
	return all
}

func (s *Store) listStorage() []recording.Info {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("Failed to list recordings", "dir", s.dir, "error", err)
		return nil
	}

	var infos []recording.Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if rec := s.Load(p); rec != nil {
			infos = append(infos, info(rec, p, recording.SourceStorage))
		}
	}
	return infos
}

func (s *Store) listPresets() []recording.Info {
	if s.presets == nil {
		return nil
	}
	entries, err := fs.ReadDir(s.presets, s.presetDir)
	if err != nil {
		s.logger.Error("Failed to list presets", "error", err)
		return nil
	}

	var infos []recording.Info
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		p := PresetPrefix + e.Name()
		if rec := s.Load(p); rec != nil {
			infos = append(infos, info(rec, p, recording.SourcePreset))
		}
	}
	return infos
}

func info(rec *recording.Recording, p string, src recording.Source) recording.Info {
	return recording.Info{
		Name:     rec.Metadata.Name,
		Path:     p,
		Duration: rec.Metadata.DurationSeconds,
		Actions:  rec.Metadata.TotalActions,
		Source:   src,
	}
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Attack"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
