package store

import (
	"context"
	"sync"

	"github.com/matzehuels/stackforge/pkg/project"
)

// MemoryStore keeps projects in memory. Values are copied on the way in and
// out, so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*project.Project)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound(id)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, p *project.Project) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	sortProjects(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
