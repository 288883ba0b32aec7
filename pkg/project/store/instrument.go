package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/stackforge/pkg/observability"
	"github.com/matzehuels/stackforge/pkg/project"
)

// instrumented reports every operation of the wrapped store to the
// registered observability.StoreHooks.
type instrumented struct {
	Store
	backend string
}

func instrument(backend string, s Store) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Get(ctx context.Context, id string) (*project.Project, error) {
	start := time.Now()
	p, err := s.Store.Get(ctx, id)
	observability.Store().OnLoad(ctx, s.backend, id, time.Since(start), err)
	return p, err
}

func (s *instrumented) Put(ctx context.Context, p *project.Project) error {
	start := time.Now()
	err := s.Store.Put(ctx, p)
	size := 0
	if data, merr := json.Marshal(p); merr == nil {
		size = len(data)
	}
	observability.Store().OnSave(ctx, s.backend, p.ID, size, time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	observability.Store().OnDelete(ctx, s.backend, id, err)
	return err
}

// Backend names the wrapped backend.
func (s *instrumented) Backend() string { return s.backend }

// BackendOf returns the backend name of a store returned by Open, or "".
func BackendOf(s Store) string {
	if b, ok := s.(interface{ Backend() string }); ok {
		return b.Backend()
	}
	return ""
}
