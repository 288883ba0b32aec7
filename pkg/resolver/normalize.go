package resolver

import (
	"fmt"

	"github.com/matzehuels/stackforge/pkg/feature"
)

// ViolationKind classifies a broken invariant reported by [Resolver.Check].
type ViolationKind int

const (
	// NotSupported: an enabled feature the target does not support.
	NotSupported ViolationKind = iota
	// MissingRequirement: an enabled feature with a disabled requirement.
	MissingRequirement
)

// Violation is one enabled feature that breaks the invariant.
type Violation struct {
	Feature     feature.Key
	Kind        ViolationKind
	Requirement feature.Key // set for MissingRequirement
}

func (v Violation) String() string {
	if v.Kind == MissingRequirement {
		return fmt.Sprintf("%s is enabled but requires disabled %s", v.Feature, v.Requirement)
	}
	return fmt.Sprintf("%s is enabled but not supported", v.Feature)
}

// Check lists every invariant violation in in, in catalog order. A
// consistent configuration yields no violations. Unknown keys in the state
// are ignored; in must name a valid target.
func (r *Resolver) Check(in Input) ([]Violation, error) {
	if err := r.targets().Check(in.Language, in.Framework); err != nil {
		return nil, err
	}
	var out []Violation
	for _, k := range in.State.EnabledKeys(r.catalog()) {
		if !r.matrix.IsSupportedByFramework(in.Language, in.Framework, k) {
			out = append(out, Violation{Feature: k, Kind: NotSupported})
		}
		for _, dep := range r.graph.DependenciesOf(k) {
			if !in.State[dep] {
				out = append(out, Violation{Feature: k, Kind: MissingRequirement, Requirement: dep})
			}
		}
	}
	return out, nil
}

// Normalize repairs an arbitrary state into a consistent one for its target
// by switching features off, never on. Unsupported features go first, then
// features whose requirements are disabled, visited in dependency order so a
// single pass reaches the fixed point.
//
// The returned state holds exactly the catalog keys; unknown keys are
// dropped and missing keys read as disabled.
func (r *Resolver) Normalize(in Input) (Result, error) {
	if err := r.targets().Check(in.Language, in.Framework); err != nil {
		return Result{}, err
	}

	c := r.catalog()
	state := feature.NewState(c)
	for _, k := range c.Keys() {
		state[k] = in.State[k]
	}
	res := Result{Language: in.Language, Framework: in.Framework, State: state}

	for _, k := range c.Keys() {
		if state[k] && !r.matrix.IsSupportedByFramework(in.Language, in.Framework, k) {
			state[k] = false
			res.Changes = append(res.Changes, Change{
				Feature: k, From: true, To: false,
				Kind: Unsupported, Cause: string(in.Framework),
			})
		}
	}
	for _, k := range r.graph.TopoOrder() {
		if !state[k] {
			continue
		}
		for _, dep := range r.graph.DependenciesOf(k) {
			if !state[dep] {
				state[k] = false
				res.Changes = append(res.Changes, Change{
					Feature: k, From: true, To: false,
					Kind: Dependent, Cause: string(dep),
				})
				break
			}
		}
	}
	return res, nil
}
