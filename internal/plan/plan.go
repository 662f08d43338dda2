// Package plan persists the household's tasks and routines as a single
// YAML file, loaded whole and saved atomically.
package plan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"dayflow/internal/model"
)

// Plan is the full task/routine working set.
type Plan struct {
	Tasks    []model.Task    `yaml:"tasks"`
	Routines []model.Routine `yaml:"routines"`
}

// Load reads the plan file at path. A missing file yields an empty plan
// (first run), not an error. Items without ids are assigned one so later
// intents (reschedule, reassign, toggle) can address them.
func Load(path string) (*Plan, error) {
	if path == "" {
		return nil, errors.New("plan path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Plan{}, nil
		}
		return nil, err
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.ensureIDs()

	return &p, nil
}

// Save writes the plan atomically (temp file + rename) with 0600 perms.
func Save(path string, p *Plan) error {
	if path == "" {
		return errors.New("plan path is empty")
	}
	if p == nil {
		return errors.New("plan is nil")
	}

	p.ensureIDs()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayflow-plan-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (p *Plan) ensureIDs() {
	for i := range p.Tasks {
		if p.Tasks[i].ID == "" {
			p.Tasks[i].ID = uuid.NewString()
		}
	}
	for i := range p.Routines {
		if p.Routines[i].ID == "" {
			p.Routines[i].ID = uuid.NewString()
		}
	}
}

// FindTask returns a pointer into the plan's task slice, or nil.
func (p *Plan) FindTask(id string) *model.Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// FindRoutine returns a pointer into the plan's routine slice, or nil.
func (p *Plan) FindRoutine(id string) *model.Routine {
	for i := range p.Routines {
		if p.Routines[i].ID == id {
			return &p.Routines[i]
		}
	}
	return nil
}
