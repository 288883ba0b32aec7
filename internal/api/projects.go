package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/project"
	"github.com/matzehuels/stackforge/pkg/project/store"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

type createProjectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Language    target.Language  `json:"language"`
	Framework   target.Framework `json:"framework"`
}

type mutationResponse struct {
	Project *project.Project `json:"project"`
	Result  resultDoc        `json:"result"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []*project.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := project.New(s.eng, req.Name, req.Language, req.Framework)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p.Description = req.Description
	if err := s.store.Put(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("project created", "id", p.ID, "name", p.Name, "language", p.Language, "framework", p.Framework)
	w.Header().Set("Location", "/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()

	p, err := s.load(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()

	p, err := store.Find(r.Context(), s.store, chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), p.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("project deleted", "id", p.ID, "name", p.Name)
	w.WriteHeader(http.StatusNoContent)
}

// handleMutateProject applies one mutation to a stored project through a
// binder, which persists accepted results.
func (s *Server) handleMutateProject(w http.ResponseWriter, r *http.Request) {
	var spec resolver.Spec
	if err := decode(r, &spec); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := spec.Mutation()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.projectMu.Lock()
	defer s.projectMu.Unlock()

	p, err := s.load(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b := project.NewBinder(s.eng, p, project.WithSaver(s.store), project.WithBinderLogger(s.logger))
	res, err := b.Apply(r.Context(), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Project: b.Project(), Result: newResultDoc(res)})
}

func (s *Server) handleExportProject(w http.ResponseWriter, r *http.Request) {
	s.projectMu.Lock()
	defer s.projectMu.Unlock()

	p, err := s.load(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cfg, err := project.Export(s.eng, p, time.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// load fetches a project and repairs it against the current tables, so
// every handler works on a consistent configuration. A repaired project is
// saved back. Callers hold projectMu.
func (s *Server) load(ctx context.Context, ref string) (*project.Project, error) {
	p, err := store.Find(ctx, s.store, ref)
	if err != nil {
		return nil, err
	}
	changes, err := p.Repair(ctx, s.eng)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidProject, err, "stored project %s", ref)
	}
	if len(changes) > 0 {
		s.logger.Warn("repaired stored project", "id", p.ID, "changes", len(changes))
		if err := s.store.Put(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}
