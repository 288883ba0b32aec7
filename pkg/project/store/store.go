// Package store persists project documents.
//
// Backends:
//   - file: one JSON document per project in a directory (CLI default)
//   - memory: process-local map, for tests and ephemeral servers
//   - redis: JSON values under "<prefix>project:<id>" plus an index set
//   - mongodb: one BSON document per project in a collection
//
// [Open] picks the backend from a DSN:
//
//	s, err := store.Open(ctx, "redis://localhost:6379/0")
//	s, err := store.Open(ctx, "mongodb://localhost:27017/stackforge")
//	s, err := store.Open(ctx, "memory://")
//	s, err := store.Open(ctx, "/home/me/.local/share/stackforge/projects")
//
// Stores are dumb containers: they do not validate feature states. Callers
// run [project.Project.Repair] on loaded projects.
package store

import (
	"cmp"
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/project"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// Store is the interface for project storage backends.
type Store interface {
	// Get returns the project with the given ID, or an error wrapping
	// ErrNotFound with the PROJECT_NOT_FOUND code.
	Get(ctx context.Context, id string) (*project.Project, error)

	// Put creates or replaces a project.
	Put(ctx context.Context, p *project.Project) error

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every project ordered by name, then ID.
	List(ctx context.Context) ([]*project.Project, error)

	// Close releases backend resources.
	Close() error
}

// Open returns the store described by dsn. Schemes redis://, rediss://,
// mongodb://, mongodb+srv:// and memory:// select the matching backend;
// anything else is treated as a directory for the file store.
func Open(ctx context.Context, dsn string) (Store, error) {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		s, err := NewFileStore(dsn)
		if err != nil {
			return nil, err
		}
		return instrument("file", s), nil
	}

	switch u.Scheme {
	case "redis", "rediss":
		s, err := NewRedisStore(ctx, RedisConfig{URL: dsn})
		if err != nil {
			return nil, err
		}
		return instrument("redis", s), nil
	case "mongodb", "mongodb+srv":
		db := strings.Trim(u.Path, "/")
		s, err := NewMongoStore(ctx, MongoConfig{URI: dsn, Database: db})
		if err != nil {
			return nil, err
		}
		return instrument("mongodb", s), nil
	case "memory":
		return instrument("memory", NewMemoryStore()), nil
	case "file":
		s, err := NewFileStore(u.Path)
		if err != nil {
			return nil, err
		}
		return instrument("file", s), nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported store scheme %q", u.Scheme)
}

// Find resolves a user supplied reference: an exact ID, a unique name, or a
// unique ID prefix of at least four characters.
func Find(ctx context.Context, s Store, ref string) (*project.Project, error) {
	ref = strings.TrimSpace(ref)
	if _, err := uuid.Parse(ref); err == nil {
		return s.Get(ctx, ref)
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var byName, byPrefix []*project.Project
	for _, p := range all {
		if p.Name == ref {
			byName = append(byName, p)
		}
		if len(ref) >= 4 && strings.HasPrefix(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
	}
	for _, matches := range [][]*project.Project{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, errs.New(errs.ErrCodeInvalidInput, "%q matches %d projects, use the project id", ref, len(matches))
		}
	}
	return nil, notFound(ref)
}

func notFound(id string) error {
	return errs.Wrap(errs.ErrCodeProjectNotFound, ErrNotFound, "%s", id)
}

// checkID guards backends against malformed keys and path traversal.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidProject, err, "invalid project id %q", id)
	}
	return nil
}

func sortProjects(ps []*project.Project) {
	slices.SortFunc(ps, func(a, b *project.Project) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
