package compat

import (
	"slices"
	"testing"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

type fixture struct {
	catalog *feature.Catalog
	targets *target.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c, err := feature.NewCatalog([]feature.Info{
		{Key: feature.I18n},
		{Key: feature.DomainEvents},
		{Key: feature.EventSourcing},
		{Key: feature.JteTemplates},
		{Key: feature.Swagger},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := target.NewRegistry(
		[]target.LanguageInfo{{Name: target.Rust, Label: "Rust"}, {Name: target.Java, Label: "Java"}},
		[]target.FrameworkInfo{
			{Name: target.ActixWeb, Language: target.Rust},
			{Name: target.Axum, Label: "Axum", Language: target.Rust},
			{Name: target.SpringBoot, Language: target.Java},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{catalog: c, targets: r}
}

func (f fixture) matrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := New(f.catalog, f.targets,
		map[target.Language]feature.Set{
			target.Rust: feature.NewSet(feature.I18n, feature.DomainEvents, feature.EventSourcing, feature.Swagger),
			target.Java: feature.NewSet(feature.I18n, feature.DomainEvents, feature.JteTemplates, feature.Swagger),
		},
		map[target.Framework]Override{
			target.Axum:     {Remove: feature.NewSet(feature.I18n, feature.DomainEvents)},
			target.ActixWeb: {Add: feature.NewSet(feature.JteTemplates)},
		},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

func TestIsSupportedByFramework(t *testing.T) {
	m := newFixture(t).matrix(t)

	tests := []struct {
		name string
		lang target.Language
		fw   target.Framework
		key  feature.Key
		want bool
	}{
		{"base support", target.Rust, target.Axum, feature.Swagger, true},
		{"removal revokes base support", target.Rust, target.Axum, feature.I18n, false},
		{"removal revokes base support 2", target.Rust, target.Axum, feature.DomainEvents, false},
		{"addition rescues unsupported", target.Rust, target.ActixWeb, feature.JteTemplates, true},
		{"unsupported without override", target.Rust, target.Axum, feature.JteTemplates, false},
		{"framework without override", target.Java, target.SpringBoot, feature.EventSourcing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IsSupportedByFramework(tt.lang, tt.fw, tt.key); got != tt.want {
				t.Errorf("IsSupportedByFramework(%s, %s, %s) = %v, want %v", tt.lang, tt.fw, tt.key, got, tt.want)
			}
		})
	}

	// Language-level support ignores overrides.
	if !m.IsSupportedByLanguage(target.Rust, feature.I18n) {
		t.Error("IsSupportedByLanguage(rust, i18n) = false, want true")
	}
}

func TestPartitionIsTotalAndDisjoint(t *testing.T) {
	f := newFixture(t)
	m := f.matrix(t)

	for _, fw := range f.targets.AllFrameworks() {
		supported, unsupported := m.Partition(fw.Language, fw.Name)
		if len(supported)+len(unsupported) != f.catalog.Len() {
			t.Errorf("%s: partition covers %d keys, want %d", fw.Name, len(supported)+len(unsupported), f.catalog.Len())
		}
		seen := feature.NewSet(supported...)
		for _, k := range unsupported {
			if seen.Has(k) {
				t.Errorf("%s: %s in both partitions", fw.Name, k)
			}
			seen.Add(k)
		}
		for _, k := range f.catalog.Keys() {
			if !seen.Has(k) {
				t.Errorf("%s: %s in neither partition", fw.Name, k)
			}
		}
	}
}

func TestUnsupportedOrder(t *testing.T) {
	m := newFixture(t).matrix(t)
	want := []feature.Key{feature.I18n, feature.DomainEvents, feature.JteTemplates}
	if got := m.Unsupported(target.Rust, target.Axum); !slices.Equal(got, want) {
		t.Errorf("Unsupported(rust, axum) = %v, want %v", got, want)
	}
	if got := m.UnsupportedSet(target.Rust, target.Axum); got.Len() != 3 {
		t.Errorf("UnsupportedSet() = %v", got)
	}
}

func TestExplain(t *testing.T) {
	m := newFixture(t).matrix(t)

	tests := []struct {
		key  feature.Key
		want string
	}{
		{feature.I18n, "not available with Axum"},
		{feature.JteTemplates, "not available for Rust"},
		{feature.Swagger, ""},
	}
	for _, tt := range tests {
		if got := m.Explain(target.Rust, target.Axum, tt.key); got != tt.want {
			t.Errorf("Explain(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNewValidation(t *testing.T) {
	f := newFixture(t)
	fullBase := map[target.Language]feature.Set{
		target.Rust: feature.NewSet(feature.Swagger),
		target.Java: feature.NewSet(feature.Swagger),
	}

	tests := []struct {
		name      string
		base      map[target.Language]feature.Set
		overrides map[target.Framework]Override
		code      errs.Code
	}{
		{
			name: "empty language support",
			base: map[target.Language]feature.Set{target.Rust: feature.NewSet(feature.Swagger)},
			code: errs.ErrCodeInvalidTables,
		},
		{
			name: "unknown language",
			base: map[target.Language]feature.Set{
				target.Rust: feature.NewSet(feature.Swagger),
				target.Java: feature.NewSet(feature.Swagger),
				target.Go:   feature.NewSet(feature.Swagger),
			},
			code: errs.ErrCodeInvalidTables,
		},
		{
			name: "unknown feature in base",
			base: map[target.Language]feature.Set{
				target.Rust: feature.NewSet(feature.Kubernetes),
				target.Java: feature.NewSet(feature.Swagger),
			},
			code: errs.ErrCodeInvalidTables,
		},
		{
			name:      "unknown framework",
			base:      fullBase,
			overrides: map[target.Framework]Override{target.Gin: {}},
			code:      errs.ErrCodeInvalidTables,
		},
		{
			name: "contradictory override",
			base: fullBase,
			overrides: map[target.Framework]Override{
				target.Axum: {Add: feature.NewSet(feature.I18n), Remove: feature.NewSet(feature.I18n)},
			},
			code: errs.ErrCodeConflictingOverride,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(f.catalog, f.targets, tt.base, tt.overrides)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("New() code = %q, want %q (err=%v)", got, tt.code, err)
			}
		})
	}
}

func TestOverrideIsCopied(t *testing.T) {
	m := newFixture(t).matrix(t)
	o, ok := m.Override(target.Axum)
	if !ok {
		t.Fatal("Override(axum) missing")
	}
	o.Remove.Add(feature.Swagger)
	if !m.IsSupportedByFramework(target.Rust, target.Axum, feature.Swagger) {
		t.Error("mutating the returned override changed the matrix")
	}
}
