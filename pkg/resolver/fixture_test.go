package resolver

import (
	"testing"

	"github.com/matzehuels/stackforge/pkg/compat"
	"github.com/matzehuels/stackforge/pkg/depgraph"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

var fixtureKeys = []feature.Key{
	feature.Swagger,
	feature.MailService,
	feature.PasswordReset,
	feature.EmailVerification,
	feature.JteTemplates,
	feature.I18n,
	feature.DomainEvents,
	feature.EventSourcing,
	feature.CQRS,
	feature.Sagas,
	feature.JWTAuth,
	feature.OAuth2,
}

// newResolver builds a small two-language world:
//
//	rust/actix-web  base + jteTemplates
//	rust/axum       base - i18n - domainEvents
//	java/*          everything, micronaut drops jteTemplates
func newResolver(t testing.TB) *Resolver {
	t.Helper()

	infos := make([]feature.Info, len(fixtureKeys))
	for i, k := range fixtureKeys {
		infos[i] = feature.Info{Key: k}
	}
	c, err := feature.NewCatalog(infos)
	if err != nil {
		t.Fatal(err)
	}

	reg, err := target.NewRegistry(
		[]target.LanguageInfo{{Name: target.Rust, Label: "Rust"}, {Name: target.Java, Label: "Java"}},
		[]target.FrameworkInfo{
			{Name: target.ActixWeb, Label: "Actix Web", Language: target.Rust},
			{Name: target.Axum, Label: "Axum", Language: target.Rust},
			{Name: target.SpringBoot, Label: "Spring Boot", Language: target.Java},
			{Name: target.Micronaut, Label: "Micronaut", Language: target.Java},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	rustBase := feature.NewSet(fixtureKeys...)
	delete(rustBase, feature.JteTemplates)
	delete(rustBase, feature.Sagas)

	m, err := compat.New(c, reg,
		map[target.Language]feature.Set{
			target.Rust: rustBase,
			target.Java: feature.NewSet(fixtureKeys...),
		},
		map[target.Framework]compat.Override{
			target.ActixWeb:  {Add: feature.NewSet(feature.JteTemplates)},
			target.Axum:      {Remove: feature.NewSet(feature.I18n, feature.DomainEvents)},
			target.Micronaut: {Remove: feature.NewSet(feature.JteTemplates)},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	g, err := depgraph.New(c, map[feature.Key][]feature.Key{
		feature.PasswordReset:     {feature.MailService},
		feature.EmailVerification: {feature.MailService},
		feature.JteTemplates:      {feature.MailService},
		feature.EventSourcing:     {feature.DomainEvents},
		feature.CQRS:              {feature.DomainEvents},
		feature.Sagas:             {feature.EventSourcing},
		feature.OAuth2:            {feature.JWTAuth},
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := New(m, g)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// input returns a configuration with exactly the given keys enabled.
func input(r *Resolver, lang target.Language, fw target.Framework, on ...feature.Key) Input {
	s := feature.NewState(r.Matrix().Catalog())
	for _, k := range on {
		s[k] = true
	}
	return Input{Language: lang, Framework: fw, State: s}
}

func mustResolve(t *testing.T, r *Resolver, in Input, m Mutation) Result {
	t.Helper()
	res, err := r.Resolve(in, m)
	if err != nil {
		t.Fatalf("Resolve(%s) error: %v", m, err)
	}
	return res
}

func assertConsistent(t *testing.T, r *Resolver, res Result) {
	t.Helper()
	v, err := r.Check(res.Input())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(v) > 0 {
		t.Errorf("result breaks the invariant: %v", v)
	}
}
