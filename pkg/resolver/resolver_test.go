package resolver

import (
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/stackforge/pkg/compat"
	"github.com/matzehuels/stackforge/pkg/depgraph"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

func TestFrameworkChangeCascades(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Rust, target.ActixWeb, feature.I18n, feature.DomainEvents, feature.EventSourcing, feature.Swagger)

	res := mustResolve(t, r, in, ChangeFramework{Framework: target.Axum})

	want := []Change{
		{Feature: feature.I18n, From: true, To: false, Kind: Unsupported, Cause: "axum"},
		{Feature: feature.DomainEvents, From: true, To: false, Kind: Unsupported, Cause: "axum"},
		{Feature: feature.EventSourcing, From: true, To: false, Kind: Dependent, Cause: "domainEvents"},
	}
	if !slices.Equal(res.Changes, want) {
		t.Errorf("Changes = %v, want %v", res.Changes, want)
	}
	if res.Framework != target.Axum || res.Language != target.Rust {
		t.Errorf("target = %s/%s, want rust/axum", res.Language, res.Framework)
	}
	if !res.State[feature.Swagger] {
		t.Error("supported feature swagger was switched off")
	}
	if got := res.Changes[2].Reason(); got != "requires domainEvents" {
		t.Errorf("Reason() = %q", got)
	}
	assertConsistent(t, r, res)
}

func TestSupportLossCascadesThroughDependents(t *testing.T) {
	r := newResolver(t)
	// jteTemplates is only available on actix-web; mailService stays.
	in := input(r, target.Rust, target.ActixWeb, feature.MailService, feature.JteTemplates, feature.PasswordReset)

	res := mustResolve(t, r, in, ChangeFramework{Framework: target.Axum})
	if got := res.Disabled(); !slices.Equal(got, []feature.Key{feature.JteTemplates}) {
		t.Errorf("Disabled() = %v, want [jteTemplates]", got)
	}
	if !res.State[feature.MailService] || !res.State[feature.PasswordReset] {
		t.Error("unrelated features were switched off")
	}
}

func TestLanguageChange(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Java, target.SpringBoot,
		feature.Sagas, feature.EventSourcing, feature.DomainEvents, feature.CQRS, feature.MailService)

	t.Run("default framework", func(t *testing.T) {
		res := mustResolve(t, r, in, ChangeLanguage{Language: target.Rust})
		if res.Framework != target.ActixWeb {
			t.Errorf("Framework = %s, want the first declared rust framework", res.Framework)
		}
		if got := res.Disabled(); !slices.Equal(got, []feature.Key{feature.Sagas}) {
			t.Errorf("Disabled() = %v, want [sagas]", got)
		}
		assertConsistent(t, r, res)
	})

	t.Run("explicit framework", func(t *testing.T) {
		res := mustResolve(t, r, in, ChangeLanguage{Language: target.Rust, Framework: target.Axum})
		want := []feature.Key{feature.DomainEvents, feature.Sagas, feature.EventSourcing, feature.CQRS}
		if got := res.Disabled(); !slices.Equal(got, want) {
			t.Errorf("Disabled() = %v, want %v", got, want)
		}
		if !res.State[feature.MailService] {
			t.Error("mailService should survive")
		}
		assertConsistent(t, r, res)
	})
}

func TestTargetChangeIsIdempotent(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Rust, target.ActixWeb, feature.JteTemplates, feature.MailService)

	for _, m := range []Mutation{
		ChangeFramework{Framework: target.ActixWeb},
		ChangeLanguage{Language: target.Rust},
		ChangeLanguage{Language: target.Rust, Framework: target.ActixWeb},
	} {
		t.Run(m.String(), func(t *testing.T) {
			res := mustResolve(t, r, in, m)
			if len(res.Changes) != 0 {
				t.Errorf("Changes = %v, want none", res.Changes)
			}
			if !reflect.DeepEqual(res.State, in.State) {
				t.Errorf("State = %v, want %v", res.State, in.State)
			}
		})
	}
}

func TestSameTargetRepairsState(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Rust, target.Axum, feature.I18n, feature.DomainEvents, feature.EventSourcing)

	res := mustResolve(t, r, in, ChangeFramework{Framework: target.Axum})

	want := []Change{
		{Feature: feature.I18n, From: true, To: false, Kind: Unsupported, Cause: "axum"},
		{Feature: feature.DomainEvents, From: true, To: false, Kind: Unsupported, Cause: "axum"},
		{Feature: feature.EventSourcing, From: true, To: false, Kind: Dependent, Cause: "domainEvents"},
	}
	if !slices.Equal(res.Changes, want) {
		t.Errorf("Changes = %v, want %v", res.Changes, want)
	}
	assertConsistent(t, r, res)
}

func TestEnableRestoresMissingRequirements(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Java, target.SpringBoot, feature.PasswordReset)

	res := mustResolve(t, r, in, Enable{Feature: feature.PasswordReset})

	want := []Change{
		{Feature: feature.MailService, From: false, To: true, Kind: Required, Cause: "passwordReset"},
	}
	if !slices.Equal(res.Changes, want) {
		t.Errorf("Changes = %v, want %v", res.Changes, want)
	}
	assertConsistent(t, r, res)
}

func TestEnablePullsRequirements(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name    string
		in      Input
		feature feature.Key
		want    []Change
	}{
		{
			name:    "single requirement",
			in:      input(r, target.Java, target.SpringBoot),
			feature: feature.PasswordReset,
			want: []Change{
				{Feature: feature.MailService, From: false, To: true, Kind: Required, Cause: "passwordReset"},
			},
		},
		{
			name:    "transitive requirements in breadth-first order",
			in:      input(r, target.Java, target.SpringBoot),
			feature: feature.Sagas,
			want: []Change{
				{Feature: feature.EventSourcing, From: false, To: true, Kind: Required, Cause: "sagas"},
				{Feature: feature.DomainEvents, From: false, To: true, Kind: Required, Cause: "sagas"},
			},
		},
		{
			name:    "satisfied requirements produce no change",
			in:      input(r, target.Java, target.SpringBoot, feature.MailService),
			feature: feature.EmailVerification,
			want:    nil,
		},
		{
			name:    "no requirements",
			in:      input(r, target.Rust, target.Axum),
			feature: feature.Swagger,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustResolve(t, r, tt.in, Enable{Feature: tt.feature})
			if res.Rejected() {
				t.Fatalf("unexpected rejection: %s", res.Rejection)
			}
			if !res.State[tt.feature] {
				t.Errorf("%s not enabled", tt.feature)
			}
			if !slices.Equal(res.Changes, tt.want) {
				t.Errorf("Changes = %v, want %v", res.Changes, tt.want)
			}
			assertConsistent(t, r, res)
		})
	}
}

func TestPasswordResetScenario(t *testing.T) {
	r := newResolver(t)
	res := mustResolve(t, r, input(r, target.Rust, target.Axum), Toggle{Feature: feature.PasswordReset, On: true})

	if len(res.Changes) != 1 {
		t.Fatalf("Changes = %v, want exactly one", res.Changes)
	}
	if c := res.Changes[0]; c.Feature != feature.MailService || c.Reason() != "required by passwordReset" {
		t.Errorf("change = %v", c)
	}
	if !res.State[feature.PasswordReset] || !res.State[feature.MailService] {
		t.Error("passwordReset and mailService should both be enabled")
	}
}

func TestRejectedEnableLeavesStateUntouched(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name     string
		in       Input
		feature  feature.Key
		blocking []feature.Key
	}{
		{
			name:     "unsupported requirement",
			in:       input(r, target.Rust, target.Axum, feature.Swagger),
			feature:  feature.EventSourcing,
			blocking: []feature.Key{feature.DomainEvents},
		},
		{
			name:     "unsupported feature and requirement",
			in:       input(r, target.Rust, target.Axum),
			feature:  feature.Sagas,
			blocking: []feature.Key{feature.Sagas, feature.DomainEvents},
		},
		{
			name:     "unsupported feature",
			in:       input(r, target.Java, target.Micronaut, feature.MailService),
			feature:  feature.JteTemplates,
			blocking: []feature.Key{feature.JteTemplates},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.in.State.Clone()
			res := mustResolve(t, r, tt.in, Enable{Feature: tt.feature})

			if !res.Rejected() {
				t.Fatal("expected a rejection")
			}
			if res.Rejection.Feature != tt.feature || !slices.Equal(res.Rejection.Blocking, tt.blocking) {
				t.Errorf("Rejection = %+v, want blocking %v", res.Rejection, tt.blocking)
			}
			if !reflect.DeepEqual(res.State, before) {
				t.Errorf("State = %v, want %v", res.State, before)
			}
			if len(res.Changes) != 0 {
				t.Errorf("Changes = %v, want none", res.Changes)
			}
		})
	}
}

func TestDisableCascades(t *testing.T) {
	r := newResolver(t)

	t.Run("mailService", func(t *testing.T) {
		in := input(r, target.Java, target.SpringBoot, feature.MailService, feature.PasswordReset, feature.JteTemplates)
		res := mustResolve(t, r, in, Disable{Feature: feature.MailService})
		want := []Change{
			{Feature: feature.PasswordReset, From: true, To: false, Kind: Dependent, Cause: "mailService"},
			{Feature: feature.JteTemplates, From: true, To: false, Kind: Dependent, Cause: "mailService"},
		}
		if !slices.Equal(res.Changes, want) {
			t.Errorf("Changes = %v, want %v", res.Changes, want)
		}
		if res.State[feature.MailService] {
			t.Error("mailService still enabled")
		}
		assertConsistent(t, r, res)
	})

	t.Run("transitive", func(t *testing.T) {
		in := input(r, target.Java, target.SpringBoot, feature.DomainEvents, feature.EventSourcing, feature.Sagas, feature.CQRS)
		res := mustResolve(t, r, in, Toggle{Feature: feature.DomainEvents})
		want := []Change{
			{Feature: feature.EventSourcing, From: true, To: false, Kind: Dependent, Cause: "domainEvents"},
			{Feature: feature.CQRS, From: true, To: false, Kind: Dependent, Cause: "domainEvents"},
			{Feature: feature.Sagas, From: true, To: false, Kind: Dependent, Cause: "eventSourcing"},
		}
		if !slices.Equal(res.Changes, want) {
			t.Errorf("Changes = %v, want %v", res.Changes, want)
		}
		if res.Summary() != "3 features were disabled" {
			t.Errorf("Summary() = %q", res.Summary())
		}
	})
}

func TestNoOpToggles(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Java, target.SpringBoot, feature.MailService)

	for _, m := range []Mutation{Enable{Feature: feature.MailService}, Disable{Feature: feature.Swagger}} {
		res := mustResolve(t, r, in, m)
		if len(res.Changes) != 0 || !res.State.Equal(in.State) || res.Rejected() {
			t.Errorf("%s: got %+v, want no-op", m, res)
		}
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	r := newResolver(t)
	in := input(r, target.Rust, target.ActixWeb, feature.I18n, feature.DomainEvents, feature.EventSourcing)
	before := in.State.Clone()

	for _, m := range []Mutation{
		ChangeFramework{Framework: target.Axum},
		Disable{Feature: feature.DomainEvents},
		Enable{Feature: feature.PasswordReset},
	} {
		if _, err := r.Resolve(in, m); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(in.State, before) {
			t.Fatalf("%s mutated its input: %v", m, in.State)
		}
	}
}

func TestContractViolations(t *testing.T) {
	r := newResolver(t)
	rust := input(r, target.Rust, target.Axum)

	tests := []struct {
		name string
		in   Input
		m    Mutation
		code errs.Code
	}{
		{"framework of another language", rust, ChangeFramework{Framework: target.SpringBoot}, errs.ErrCodeInvalidTarget},
		{"mismatched language change", rust, ChangeLanguage{Language: target.Java, Framework: target.Axum}, errs.ErrCodeInvalidTarget},
		{"unknown language", rust, ChangeLanguage{Language: "cobol"}, errs.ErrCodeInvalidLanguage},
		{"unknown framework", rust, ChangeFramework{Framework: "rocket"}, errs.ErrCodeInvalidFramework},
		{"unknown feature", rust, Enable{Feature: "ghost"}, errs.ErrCodeInvalidFeature},
		{"unknown feature disable", rust, Disable{Feature: "ghost"}, errs.ErrCodeInvalidFeature},
		{"nil mutation", rust, nil, errs.ErrCodeInvalidMutation},
		{"input target mismatch", Input{Language: target.Java, Framework: target.Axum}, Enable{Feature: feature.Swagger}, errs.ErrCodeInvalidTarget},
		{"unknown key in state", Input{Language: target.Rust, Framework: target.Axum, State: feature.State{"ghost": true}}, Enable{Feature: feature.Swagger}, errs.ErrCodeInvalidFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.in, tt.m)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("Resolve() code = %q, want %q (err=%v)", got, tt.code, err)
			}
			if !errs.IsContractViolation(err) {
				t.Errorf("IsContractViolation(%v) = false", err)
			}
		})
	}
}

func TestNewRequiresSharedCatalog(t *testing.T) {
	r := newResolver(t)
	other, err := feature.NewCatalog([]feature.Info{{Key: feature.Swagger}})
	if err != nil {
		t.Fatal(err)
	}
	g, err := depgraph.New(other, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(r.Matrix(), g); !errs.Is(err, errs.ErrCodeInvalidTables) {
		t.Errorf("New() error = %v, want INVALID_TABLES", err)
	}
	var m *compat.Matrix
	if _, err := New(m, g); err == nil {
		t.Error("New(nil, g) should fail")
	}
}

func TestPreview(t *testing.T) {
	r := newResolver(t)
	forced, blocking, err := r.Preview(input(r, target.Rust, target.Axum, feature.EventSourcing), feature.Sagas)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(forced, []feature.Key{feature.DomainEvents}) {
		t.Errorf("forced = %v", forced)
	}
	if !slices.Equal(blocking, []feature.Key{feature.Sagas, feature.DomainEvents}) {
		t.Errorf("blocking = %v", blocking)
	}
}

// TestRandomWalkKeepsInvariant applies long random mutation sequences and
// checks the invariant after every step.
func TestRandomWalkKeepsInvariant(t *testing.T) {
	r := newResolver(t)
	rng := rand.New(rand.NewSource(42))
	frameworks := r.Matrix().Targets().AllFrameworks()

	in := input(r, target.Java, target.SpringBoot)
	for i := 0; i < 2000; i++ {
		var m Mutation
		switch rng.Intn(4) {
		case 0:
			fw := frameworks[rng.Intn(len(frameworks))]
			m = ChangeLanguage{Language: fw.Language, Framework: fw.Name}
		case 1:
			m = Disable{Feature: fixtureKeys[rng.Intn(len(fixtureKeys))]}
		default:
			m = Enable{Feature: fixtureKeys[rng.Intn(len(fixtureKeys))]}
		}

		res := mustResolve(t, r, in, m)
		assertConsistent(t, r, res)
		if res.Rejected() && !res.State.Equal(in.State) {
			t.Fatalf("step %d: rejected %s changed the state", i, m)
		}
		for _, c := range res.Changes {
			if c.From == c.To || in.State[c.Feature] != c.From || res.State[c.Feature] != c.To {
				t.Fatalf("step %d: change %v does not match the states", i, c)
			}
		}
		in = res.Input()
	}
}
