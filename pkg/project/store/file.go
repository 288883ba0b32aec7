package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/stackforge/pkg/project"
)

// FileStore keeps one JSON document per project in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the directory if needed and returns a store in it.
// An empty dir selects [DefaultDir].
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns $XDG_DATA_HOME/stackforge/projects, falling back to
// ~/.local/share/stackforge/projects.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "stackforge", "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "stackforge", "projects"), nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*project.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id), id)
}

func (s *FileStore) read(path, id string) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", id, err)
	}
	return &p, nil
}

func (s *FileStore) Put(ctx context.Context, p *project.Project) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace the document atomically through a temp file.
	tmp, err := os.CreateTemp(s.dir, p.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write project file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove project file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}

	var out []*project.Project
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if checkID(id) != nil {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, name), id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding the project files.
func (s *FileStore) Dir() string { return s.dir }

var _ Store = (*FileStore)(nil)
