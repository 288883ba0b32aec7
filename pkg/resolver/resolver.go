package resolver

import (
	"github.com/matzehuels/stackforge/pkg/compat"
	"github.com/matzehuels/stackforge/pkg/depgraph"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// Resolver applies mutations against one support matrix and dependency
// graph. It is immutable and safe for concurrent use.
type Resolver struct {
	matrix *compat.Matrix
	graph  *depgraph.Graph
}

// New returns a resolver over m and g, which must share a catalog.
func New(m *compat.Matrix, g *depgraph.Graph) (*Resolver, error) {
	if m == nil || g == nil {
		return nil, errs.New(errs.ErrCodeInternal, "resolver needs a support matrix and a dependency graph")
	}
	if m.Catalog() != g.Catalog() {
		return nil, errs.New(errs.ErrCodeInvalidTables, "support matrix and dependency graph use different catalogs")
	}
	return &Resolver{matrix: m, graph: g}, nil
}

// Matrix returns the support matrix the resolver checks against.
func (r *Resolver) Matrix() *compat.Matrix { return r.matrix }

// Graph returns the dependency graph the resolver walks.
func (r *Resolver) Graph() *depgraph.Graph { return r.graph }

func (r *Resolver) catalog() *feature.Catalog { return r.matrix.Catalog() }

func (r *Resolver) targets() *target.Registry { return r.matrix.Targets() }

// Resolve applies m to in and returns the resulting configuration.
//
// The input state is never modified. A refused enable returns a result
// carrying a [Rejection]; the returned error is non-nil only when in or m
// name unknown keys or a framework outside its language.
func (r *Resolver) Resolve(in Input, m Mutation) (Result, error) {
	if err := r.validate(in); err != nil {
		return Result{}, err
	}

	switch m := m.(type) {
	case ChangeLanguage:
		if !r.targets().HasLanguage(m.Language) {
			return Result{}, errs.New(errs.ErrCodeInvalidLanguage, "unknown language %q", m.Language)
		}
		fw := m.Framework
		if fw == "" {
			fw, _ = r.targets().DefaultFramework(m.Language)
		}
		return r.changeTarget(in, m.Language, fw)
	case ChangeFramework:
		return r.changeTarget(in, in.Language, m.Framework)
	case Enable:
		return r.enable(in, m.Feature)
	case Disable:
		return r.disable(in, m.Feature)
	case Toggle:
		if m.On {
			return r.enable(in, m.Feature)
		}
		return r.disable(in, m.Feature)
	case nil:
		return Result{}, errs.New(errs.ErrCodeInvalidMutation, "mutation is required")
	}
	return Result{}, errs.New(errs.ErrCodeInvalidMutation, "unsupported mutation %T", m)
}

func (r *Resolver) validate(in Input) error {
	if err := r.targets().Check(in.Language, in.Framework); err != nil {
		return err
	}
	if unknown := in.State.Unknown(r.catalog()); len(unknown) > 0 {
		return errs.New(errs.ErrCodeInvalidFeature, "state contains unknown feature %q", unknown[0])
	}
	return nil
}

func unchanged(in Input) Result {
	return Result{
		Language:  in.Language,
		Framework: in.Framework,
		State:     in.State.Clone(),
	}
}

// changeTarget moves in to (lang, fw): one pass switching off everything
// the new target does not support, then a dependents cascade for each
// feature that pass switched off. The pass also runs when the target is
// unchanged, so re-selecting the current framework repairs a stale state.
func (r *Resolver) changeTarget(in Input, lang target.Language, fw target.Framework) (Result, error) {
	if err := r.targets().Check(lang, fw); err != nil {
		return Result{}, err
	}

	res := unchanged(in)
	res.Language, res.Framework = lang, fw

	unsupported := r.matrix.UnsupportedSet(lang, fw)
	var forced []feature.Key
	for _, k := range r.catalog().Keys() {
		if res.State[k] && unsupported.Has(k) {
			res.State[k] = false
			res.Changes = append(res.Changes, Change{
				Feature: k, From: true, To: false,
				Kind: Unsupported, Cause: string(fw),
			})
			forced = append(forced, k)
		}
	}
	for _, k := range forced {
		res.Changes = r.cascadeOff(res.State, k, res.Changes)
	}
	return res, nil
}

// enable switches key on with its whole requirement closure, or rejects the
// mutation if any member of the closure is unsupported. An already enabled
// key still pulls in requirements missing from the state.
func (r *Resolver) enable(in Input, key feature.Key) (Result, error) {
	if err := r.catalog().Check(key); err != nil {
		return Result{}, err
	}

	closure := r.graph.RequirementsOf(key)
	var blocking []feature.Key
	for _, k := range append([]feature.Key{key}, closure...) {
		if !r.matrix.IsSupportedByFramework(in.Language, in.Framework, k) {
			blocking = append(blocking, k)
		}
	}
	if len(blocking) > 0 {
		res := unchanged(in)
		res.Rejection = &Rejection{Feature: key, Blocking: blocking}
		return res, nil
	}

	res := unchanged(in)
	res.State[key] = true
	for _, k := range closure {
		if res.State[k] {
			continue
		}
		res.State[k] = true
		res.Changes = append(res.Changes, Change{
			Feature: k, From: false, To: true,
			Kind: Required, Cause: string(key),
		})
	}
	return res, nil
}

// disable switches key off together with everything that depends on it.
func (r *Resolver) disable(in Input, key feature.Key) (Result, error) {
	if err := r.catalog().Check(key); err != nil {
		return Result{}, err
	}
	if !in.State[key] {
		return unchanged(in), nil
	}

	res := unchanged(in)
	res.State[key] = false
	res.Changes = r.cascadeOff(res.State, key, nil)
	return res, nil
}

// cascadeOff walks the dependents of key breadth-first and switches off each
// one still enabled in state, appending a change per feature.
func (r *Resolver) cascadeOff(state feature.State, key feature.Key, changes []Change) []Change {
	r.graph.Walk(key, depgraph.Dependents, func(s depgraph.Step) bool {
		if state[s.Key] {
			state[s.Key] = false
			changes = append(changes, Change{
				Feature: s.Key, From: true, To: false,
				Kind: Dependent, Cause: string(s.Via),
			})
		}
		return true
	})
	return changes
}

// Preview reports what enabling key would force on, without applying it:
// the disabled members of its requirement closure and the unsupported ones.
// UIs use it to render "requires X" hints before the user commits a toggle.
func (r *Resolver) Preview(in Input, key feature.Key) (forced, blocking []feature.Key, err error) {
	if err := r.validate(in); err != nil {
		return nil, nil, err
	}
	if err := r.catalog().Check(key); err != nil {
		return nil, nil, err
	}
	for _, k := range append([]feature.Key{key}, r.graph.RequirementsOf(key)...) {
		if !r.matrix.IsSupportedByFramework(in.Language, in.Framework, k) {
			blocking = append(blocking, k)
		}
		if k != key && !in.State[k] {
			forced = append(forced, k)
		}
	}
	return forced, blocking, nil
}
