// Package views persists named filter presets.
package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/utils"
)

const storeFileName = "views.json"

// ErrNotFound is returned when no view matches a name or ID.
var ErrNotFound = errors.New("view not found")

// View is a saved FilterSpec.
type View struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Filter      pipeline.FilterSpec `json:"filter"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Store is the set of views kept in one directory's views.json.
type Store struct {
	Views map[string]*View `json:"views"`

	dir string
}

// Open loads the store in dir. A missing file yields an empty store.
func Open(dir string) (*Store, error) {
	s := &Store{Views: map[string]*View{}, dir: dir}
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read views: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	if s.Views == nil {
		s.Views = map[string]*View{}
	}
	return s, nil
}

// Path is the on-disk location of the store.
func (s *Store) Path() string { return filepath.Join(s.dir, storeFileName) }

// Save stores spec under name, replacing the filter of an existing view with
// the same name, and writes the store to disk.
func (s *Store) Save(name, description string, spec pipeline.FilterSpec) (*View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("view name is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	prev, err := s.Get(name)
	v := &View{ID: uuid.NewString(), Name: name, CreatedAt: now}
	if err == nil {
		cp := *prev
		v = &cp
	}
	v.Description = strings.TrimSpace(description)
	v.Filter = spec
	v.UpdatedAt = now
	// flush writes s.Views, so the entry goes in first and is rolled back if the write fails
	s.Views[v.ID] = v
	if err := s.flush(); err != nil {
		if prev != nil {
			s.Views[v.ID] = prev
		} else {
			delete(s.Views, v.ID)
		}
		return nil, err
	}
	return v, nil
}

// Get finds a view by ID or by exact name.
func (s *Store) Get(ref string) (*View, error) {
	if v, ok := s.Views[ref]; ok {
		return v, nil
	}
	for _, v := range s.Views {
		if v.Name == ref {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Remove deletes a view by ID or name and writes the store to disk.
func (s *Store) Remove(ref string) error {
	v, err := s.Get(ref)
	if err != nil {
		return err
	}
	delete(s.Views, v.ID)
	if err := s.flush(); err != nil {
		s.Views[v.ID] = v
		return err
	}
	return nil
}

// List returns the views sorted by name.
func (s *Store) List() []*View {
	out := make([]*View, 0, len(s.Views))
	for _, v := range s.Views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) flush() error {
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.Path(), data)
}
