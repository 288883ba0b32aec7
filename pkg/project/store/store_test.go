package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/observability"
	"github.com/matzehuels/stackforge/pkg/project"
	"github.com/matzehuels/stackforge/pkg/target"
)

func newProject(t *testing.T, name string) *project.Project {
	t.Helper()
	eng, err := engine.Default()
	if err != nil {
		t.Fatal(err)
	}
	p, err := project.New(eng, name, target.Python, target.Django)
	if err != nil {
		t.Fatal(err)
	}
	p.Features[feature.MailService] = true
	p.Features[feature.PasswordReset] = true
	return p
}

// runStoreSuite exercises the Store contract. Backends call it from their
// own tests.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "5b0c9c6e-2b8a-4a55-9d0d-2f3c1c7d0a11")
		if !errors.Is(err, ErrNotFound) || !errs.Is(err, errs.ErrCodeProjectNotFound) {
			t.Errorf("Get() error = %v, want not found", err)
		}
	})

	t.Run("put get list delete", func(t *testing.T) {
		beta := newProject(t, "beta")
		alpha := newProject(t, "alpha")
		for _, p := range []*project.Project{beta, alpha} {
			if err := s.Put(ctx, p); err != nil {
				t.Fatalf("Put() error: %v", err)
			}
		}

		got, err := s.Get(ctx, alpha.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got.Name != "alpha" || got.Framework != target.Django || !got.Features[feature.PasswordReset] {
			t.Errorf("Get() = %+v", got)
		}
		if !got.CreatedAt.Truncate(time.Millisecond).Equal(alpha.CreatedAt.Truncate(time.Millisecond)) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, alpha.CreatedAt)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "beta" {
			t.Errorf("List() = %v, want alpha, beta", names(list))
		}

		alpha.Description = "renamed"
		if err := s.Put(ctx, alpha); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.Get(ctx, alpha.ID); got == nil || got.Description != "renamed" {
			t.Error("Put() did not replace the project")
		}

		for _, p := range []*project.Project{alpha, beta} {
			if err := s.Delete(ctx, p.ID); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
		}
		if err := s.Delete(ctx, alpha.ID); err != nil {
			t.Errorf("second Delete() error: %v", err)
		}
		if list, _ := s.List(ctx); len(list) != 0 {
			t.Errorf("List() after delete = %v", names(list))
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		p := newProject(t, "bad")
		p.ID = "../../etc/passwd"
		if err := s.Put(ctx, p); !errs.Is(err, errs.ErrCodeInvalidProject) {
			t.Errorf("Put() error = %v, want INVALID_PROJECT", err)
		}
	})
}

func names(ps []*project.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runStoreSuite(t, s)
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := newProject(t, "alpha")
	if err := s.Put(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Features[feature.Caching] = true

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Features[feature.Caching] {
		t.Error("store shares the caller's feature map")
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %v, want no projects", names(list))
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "stackforge", "projects") {
		t.Errorf("DefaultDir() = %q", dir)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		dsn     string
		backend string
	}{
		{dir, "file"},
		{"file://" + dir, "file"},
		{"memory://", "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			s, err := Open(ctx, tt.dsn)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer s.Close()
			if got := BackendOf(s); got != tt.backend {
				t.Errorf("BackendOf() = %q, want %q", got, tt.backend)
			}
		})
	}

	if _, err := Open(ctx, "ftp://example.com/projects"); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Open(ftp) error = %v, want UNSUPPORTED", err)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alpha := newProject(t, "alpha")
	beta := newProject(t, "beta")
	twin := newProject(t, "beta")
	for _, p := range []*project.Project{alpha, beta, twin} {
		if err := s.Put(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if p, err := Find(ctx, s, alpha.ID); err != nil || p.ID != alpha.ID {
		t.Errorf("Find(id) = %v, %v", p, err)
	}
	if p, err := Find(ctx, s, "alpha"); err != nil || p.ID != alpha.ID {
		t.Errorf("Find(name) = %v, %v", p, err)
	}
	if p, err := Find(ctx, s, alpha.ID[:8]); err != nil || p.ID != alpha.ID {
		t.Errorf("Find(prefix) = %v, %v", p, err)
	}
	if _, err := Find(ctx, s, "beta"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Find(ambiguous) error = %v", err)
	}
	if _, err := Find(ctx, s, "gamma"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(missing) error = %v", err)
	}
}

type countingStoreHooks struct {
	observability.NoopStoreHooks
	loads, saves, deletes int
}

func (h *countingStoreHooks) OnLoad(context.Context, string, string, time.Duration, error) {
	h.loads++
}

func (h *countingStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {
	h.saves++
}

func (h *countingStoreHooks) OnDelete(context.Context, string, string, error) { h.deletes++ }

func TestOpenedStoresReportToHooks(t *testing.T) {
	hooks := &countingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s, err := Open(ctx, "memory://")
	if err != nil {
		t.Fatal(err)
	}
	p := newProject(t, "alpha")
	_ = s.Put(ctx, p)
	_, _ = s.Get(ctx, p.ID)
	_ = s.Delete(ctx, p.ID)

	if hooks.loads != 1 || hooks.saves != 1 || hooks.deletes != 1 {
		t.Errorf("hooks = %+v", hooks)
	}
}
