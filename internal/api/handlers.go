package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackforge/pkg/buildinfo"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/render/nodelink"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

type languageDoc struct {
	Name       target.Language `json:"name"`
	Label      string          `json:"label"`
	Frameworks []frameworkDoc  `json:"frameworks"`
}

type frameworkDoc struct {
	Name    target.Framework `json:"name"`
	Label   string           `json:"label"`
	Default bool             `json:"default,omitempty"`
}

type featureDoc struct {
	Key         feature.Key   `json:"key"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Requires    []feature.Key `json:"requires"`
	Supported   *bool         `json:"supported,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

type dependenciesDoc struct {
	Feature       feature.Key   `json:"feature"`
	Requires      []feature.Key `json:"requires"`
	Dependents    []feature.Key `json:"dependents"`
	AllRequires   []feature.Key `json:"allRequires"`
	AllDependents []feature.Key `json:"allDependents"`
}

// resolveRequest carries a configuration and, for /resolve, a mutation.
type resolveRequest struct {
	Language  target.Language `json:"language"`
	Framework target.Framework `json:"framework"`
	State     feature.State    `json:"state"`
	Mutation  *resolver.Spec   `json:"mutation,omitempty"`
}

type resultDoc struct {
	Language  target.Language     `json:"language"`
	Framework target.Framework    `json:"framework"`
	State     feature.State       `json:"state"`
	Changes   []resolver.Change   `json:"changes"`
	Summary   string              `json:"summary,omitempty"`
	Rejection *resolver.Rejection `json:"rejection,omitempty"`
}

func newResultDoc(res resolver.Result) resultDoc {
	changes := res.Changes
	if changes == nil {
		changes = []resolver.Change{}
	}
	return resultDoc{
		Language:  res.Language,
		Framework: res.Framework,
		State:     res.State,
		Changes:   changes,
		Summary:   res.Summary(),
		Rejection: res.Rejection,
	}
}

func nonNil(keys []feature.Key) []feature.Key {
	if keys == nil {
		return []feature.Key{}
	}
	return keys
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"tables":   s.eng.Source(),
		"features": s.eng.Catalog().Len(),
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	reg := s.eng.Targets()
	langs := reg.Languages()
	out := make([]languageDoc, 0, len(langs))
	for _, l := range langs {
		def, _ := reg.DefaultFramework(l.Name)
		doc := languageDoc{Name: l.Name, Label: l.Label, Frameworks: []frameworkDoc{}}
		for _, fw := range reg.Frameworks(l.Name) {
			info, _ := reg.Framework(fw)
			doc.Frameworks = append(doc.Frameworks, frameworkDoc{Name: fw, Label: info.Label, Default: fw == def})
		}
		out = append(out, doc)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleFeatures lists the catalog. With a language (and optionally a
// framework) every entry also says whether that target supports it.
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	lang := target.Language(r.URL.Query().Get("language"))
	fw := target.Framework(r.URL.Query().Get("framework"))
	if fw != "" && lang == "" {
		if l, ok := s.eng.Targets().LanguageOf(fw); ok {
			lang = l
		}
	}

	var unsupported feature.Set
	if lang != "" {
		var err error
		if fw, err = s.frameworkFor(lang, fw); err != nil {
			s.fail(w, r, err)
			return
		}
		keys, err := s.eng.UnsupportedFeatures(lang, fw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		unsupported = feature.NewSet(keys...)
	}

	infos := s.eng.Catalog().Infos()
	out := make([]featureDoc, 0, len(infos))
	for _, info := range infos {
		doc := featureDoc{
			Key:         info.Key,
			Label:       info.Label,
			Description: info.Description,
			Category:    info.Category,
			Requires:    nonNil(s.eng.Graph().DependenciesOf(info.Key)),
		}
		if lang != "" {
			ok := !unsupported.Has(info.Key)
			doc.Supported = &ok
			if !ok {
				doc.Reason = s.eng.Explain(lang, fw, info.Key)
			}
		}
		out = append(out, doc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	key := feature.Key(chi.URLParam(r, "key"))
	requires, err := s.eng.DependenciesOf(key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	dependents, _ := s.eng.DependentsOf(key)
	g := s.eng.Graph()
	writeJSON(w, http.StatusOK, dependenciesDoc{
		Feature:       key,
		Requires:      nonNil(requires),
		Dependents:    nonNil(dependents),
		AllRequires:   nonNil(g.RequirementsOf(key)),
		AllDependents: nonNil(g.AllDependentsOf(key)),
	})
}

// handleGraph renders the dependency graph as DOT (default) or SVG.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := nodelink.Options{Detailed: q.Get("detailed") == "true"}

	if focus := feature.Key(q.Get("focus")); focus != "" {
		if err := s.eng.Catalog().Check(focus); err != nil {
			s.fail(w, r, err)
			return
		}
		opts.Focus = focus
	}
	if lang := target.Language(q.Get("language")); lang != "" {
		fw, err := s.frameworkFor(lang, target.Framework(q.Get("framework")))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		keys, err := s.eng.UnsupportedFeatures(lang, fw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		opts.Unsupported = feature.NewSet(keys...)
	}

	dot := nodelink.ToDOT(s.eng.Graph(), opts)
	switch q.Get("format") {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := nodelink.RenderSVG(dot)
		if err != nil {
			s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render graph"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "unknown graph format %q (want dot or svg)", q.Get("format")))
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Mutation == nil {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidMutation, "request has no mutation"))
		return
	}
	m, err := req.Mutation.Mutation()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.eng.Resolve(r.Context(), s.input(req), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultDoc(res))
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Mutation != nil {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "normalize takes no mutation"))
		return
	}
	res, err := s.eng.Normalize(r.Context(), s.input(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultDoc(res))
}

// input turns a request into resolver input. A missing state means a
// fresh configuration with every feature off.
func (s *Server) input(req resolveRequest) resolver.Input {
	state := req.State
	if state == nil {
		state = s.eng.NewState()
	}
	return resolver.Input{Language: req.Language, Framework: req.Framework, State: state}
}

// frameworkFor fills in the language's default framework when fw is empty.
func (s *Server) frameworkFor(lang target.Language, fw target.Framework) (target.Framework, error) {
	if fw != "" {
		return fw, nil
	}
	def, ok := s.eng.Targets().DefaultFramework(lang)
	if !ok {
		return "", errs.New(errs.ErrCodeInvalidLanguage, "unknown language %q", lang)
	}
	return def, nil
}
