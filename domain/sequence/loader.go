package sequence

import (
	"fmt"
	"io/fs"
	"path"
	"time"

	"gopkg.in/yaml.v3"

	"cocbot-go/domain/calibration"
)

type yamlSequence struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Steps       []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	Button   string   `yaml:"button"`
	Settle   duration `yaml:"settle"`
	Optional bool     `yaml:"optional,omitempty"`
}

// duration is a wrapper for time.Duration that handles YAML parsing.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Loader populates a registry from YAML definitions.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new sequence loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads every .yaml file in the "sequences" directory of fsys.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "sequences")
	if err != nil {
		return fmt.Errorf("failed to read sequences directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		if err := l.loadFile(fsys, "sequences/"+entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadFile(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read sequence file %s: %w", name, err)
	}

	var ys yamlSequence
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return fmt.Errorf("failed to parse sequence file %s: %w", name, err)
	}

	seq, err := convertYAMLSequence(&ys)
	if err != nil {
		return fmt.Errorf("invalid sequence file %s: %w", name, err)
	}
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("invalid sequence file %s: %w", name, err)
	}

	l.registry.Register(seq)
	return nil
}

func convertYAMLSequence(ys *yamlSequence) (*Sequence, error) {
	seq := &Sequence{
		Name:        ys.Name,
		Description: ys.Description,
		Steps:       make([]Step, len(ys.Steps)),
	}
	for i, step := range ys.Steps {
		key, err := calibration.ParseButton(step.Button)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		seq.Steps[i] = Step{
			Button:   key,
			Settle:   time.Duration(step.Settle),
			Optional: step.Optional,
		}
	}
	return seq, nil
}
