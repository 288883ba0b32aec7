// Package compat decides whether a feature is supported by a target
// language and framework.
//
// Support is computed from two static tables: the per-language base support
// sets and the per-framework overrides. A framework override can add a
// feature its language lacks, or remove one the language would otherwise
// allow:
//
//	supported(lang, fw, f) = (f ∈ base(lang) || f ∈ add(fw)) && f ∉ remove(fw)
//
// A [Matrix] is built once by [New], which validates the tables and fails
// fast on authoring defects such as an override that both adds and removes
// the same feature. Afterwards it is read-only and safe for concurrent use.
package compat

import (
	"fmt"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// Override adjusts the base support of a framework's language.
type Override struct {
	Add    feature.Set
	Remove feature.Set
}

// Matrix answers support questions for every (language, framework) pair.
type Matrix struct {
	catalog   *feature.Catalog
	targets   *target.Registry
	base      map[target.Language]feature.Set
	overrides map[target.Framework]Override
}

// New validates the support tables and returns an immutable matrix.
//
// Validation rules:
//   - every declared language has a non-empty base set
//   - base sets only reference known languages and features
//   - overrides only reference known frameworks and features
//   - no override adds and removes the same feature (CONFLICTING_OVERRIDE)
func New(c *feature.Catalog, r *target.Registry, base map[target.Language]feature.Set, overrides map[target.Framework]Override) (*Matrix, error) {
	m := &Matrix{
		catalog:   c,
		targets:   r,
		base:      make(map[target.Language]feature.Set, len(base)),
		overrides: make(map[target.Framework]Override, len(overrides)),
	}

	for lang, set := range base {
		if !r.HasLanguage(lang) {
			return nil, errs.New(errs.ErrCodeInvalidTables, "support matrix references unknown language %q", lang)
		}
		if err := checkKeys(c, set, fmt.Sprintf("language %q", lang)); err != nil {
			return nil, err
		}
		m.base[lang] = set.Clone()
	}
	for _, l := range r.Languages() {
		if m.base[l.Name].Len() == 0 {
			return nil, errs.New(errs.ErrCodeInvalidTables, "language %q has an empty support set", l.Name)
		}
	}

	for fw, o := range overrides {
		if _, ok := r.Framework(fw); !ok {
			return nil, errs.New(errs.ErrCodeInvalidTables, "override references unknown framework %q", fw)
		}
		if err := checkKeys(c, o.Add, fmt.Sprintf("framework %q add", fw)); err != nil {
			return nil, err
		}
		if err := checkKeys(c, o.Remove, fmt.Sprintf("framework %q remove", fw)); err != nil {
			return nil, err
		}
		if both := o.Add.Intersect(o.Remove); both.Len() > 0 {
			return nil, errs.New(errs.ErrCodeConflictingOverride,
				"framework %q both adds and removes %v", fw, both.Sorted(c))
		}
		m.overrides[fw] = Override{Add: o.Add.Clone(), Remove: o.Remove.Clone()}
	}

	return m, nil
}

func checkKeys(c *feature.Catalog, set feature.Set, where string) error {
	for _, k := range set.Sorted(c) {
		if !c.Has(k) {
			return errs.New(errs.ErrCodeInvalidTables, "%s references unknown feature %q", where, k)
		}
	}
	return nil
}

// Catalog returns the feature catalog the matrix was built for.
func (m *Matrix) Catalog() *feature.Catalog { return m.catalog }

// Targets returns the language/framework registry the matrix was built for.
func (m *Matrix) Targets() *target.Registry { return m.targets }

// IsSupportedByLanguage reports whether key is in the base support set of lang.
func (m *Matrix) IsSupportedByLanguage(lang target.Language, key feature.Key) bool {
	return m.base[lang].Has(key)
}

// IsSupportedByFramework reports whether key is supported by fw running on
// lang, applying the framework's additions and removals on top of the
// language's base set. Removals win over both base support and additions.
//
// The caller must pass a framework that belongs to lang; see
// [target.Registry.Check].
func (m *Matrix) IsSupportedByFramework(lang target.Language, fw target.Framework, key feature.Key) bool {
	o := m.overrides[fw]
	if o.Remove.Has(key) {
		return false
	}
	return m.IsSupportedByLanguage(lang, key) || o.Add.Has(key)
}

// Supported returns the features supported by (lang, fw) in catalog order.
func (m *Matrix) Supported(lang target.Language, fw target.Framework) []feature.Key {
	supported, _ := m.Partition(lang, fw)
	return supported
}

// Unsupported returns the features not supported by (lang, fw) in catalog order.
func (m *Matrix) Unsupported(lang target.Language, fw target.Framework) []feature.Key {
	_, unsupported := m.Partition(lang, fw)
	return unsupported
}

// Partition splits the whole catalog into supported and unsupported keys.
// Every key lands in exactly one of the two slices.
func (m *Matrix) Partition(lang target.Language, fw target.Framework) (supported, unsupported []feature.Key) {
	for _, k := range m.catalog.Keys() {
		if m.IsSupportedByFramework(lang, fw, k) {
			supported = append(supported, k)
		} else {
			unsupported = append(unsupported, k)
		}
	}
	return supported, unsupported
}

// UnsupportedSet is like [Matrix.Unsupported] but returns a set.
func (m *Matrix) UnsupportedSet(lang target.Language, fw target.Framework) feature.Set {
	return feature.NewSet(m.Unsupported(lang, fw)...)
}

// Explain returns a short, user-facing reason why key is unsupported by
// (lang, fw), or an empty string when it is supported.
func (m *Matrix) Explain(lang target.Language, fw target.Framework, key feature.Key) string {
	o := m.overrides[fw]
	switch {
	case o.Remove.Has(key):
		return fmt.Sprintf("not available with %s", m.frameworkLabel(fw))
	case m.IsSupportedByFramework(lang, fw, key):
		return ""
	default:
		return fmt.Sprintf("not available for %s", m.languageLabel(lang))
	}
}

// Override returns the override declared for fw, if any.
func (m *Matrix) Override(fw target.Framework) (Override, bool) {
	o, ok := m.overrides[fw]
	if !ok {
		return Override{}, false
	}
	return Override{Add: o.Add.Clone(), Remove: o.Remove.Clone()}, true
}

func (m *Matrix) frameworkLabel(fw target.Framework) string {
	if info, ok := m.targets.Framework(fw); ok {
		return info.Label
	}
	return string(fw)
}

func (m *Matrix) languageLabel(lang target.Language) string {
	if info, ok := m.targets.Language(lang); ok {
		return info.Label
	}
	return string(lang)
}
