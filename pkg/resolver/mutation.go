package resolver

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// Mutation is a single user-initiated change to a project configuration.
// The set of implementations is closed.
type Mutation interface {
	fmt.Stringer
	mutation()
}

// ChangeLanguage moves the project to another language. An empty Framework
// selects the language's default framework.
type ChangeLanguage struct {
	Language  target.Language
	Framework target.Framework
}

// ChangeFramework moves the project to another framework of its current
// language.
type ChangeFramework struct {
	Framework target.Framework
}

// Enable switches a feature on.
type Enable struct {
	Feature feature.Key
}

// Disable switches a feature off.
type Disable struct {
	Feature feature.Key
}

// Toggle switches a feature to On. It behaves exactly like [Enable] or
// [Disable].
type Toggle struct {
	Feature feature.Key
	On      bool
}

func (ChangeLanguage) mutation()  {}
func (ChangeFramework) mutation() {}
func (Enable) mutation()          {}
func (Disable) mutation()         {}
func (Toggle) mutation()          {}

func (m ChangeLanguage) String() string {
	if m.Framework == "" {
		return "language " + string(m.Language)
	}
	return fmt.Sprintf("language %s/%s", m.Language, m.Framework)
}

func (m ChangeFramework) String() string { return "framework " + string(m.Framework) }
func (m Enable) String() string          { return "enable " + string(m.Feature) }
func (m Disable) String() string         { return "disable " + string(m.Feature) }

func (m Toggle) String() string {
	if m.On {
		return Enable{m.Feature}.String()
	}
	return Disable{m.Feature}.String()
}

// Mutation kinds accepted by [Spec].
const (
	KindLanguage  = "language"
	KindFramework = "framework"
	KindEnable    = "enable"
	KindDisable   = "disable"
	KindToggle    = "toggle"
)

// Spec is the serialisable form of a [Mutation], used by the HTTP API and
// the command line.
type Spec struct {
	Kind      string           `json:"kind"`
	Language  target.Language  `json:"language,omitempty"`
	Framework target.Framework `json:"framework,omitempty"`
	Feature   feature.Key      `json:"feature,omitempty"`
	On        bool             `json:"on,omitempty"`
}

// Mutation converts the spec into a [Mutation]. Missing fields are reported
// with the INVALID_MUTATION code; whether the named keys exist is checked
// later by [Resolver.Resolve].
func (s Spec) Mutation() (Mutation, error) {
	need := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return errs.New(errs.ErrCodeInvalidMutation, "%s mutation needs a %s", s.Kind, field)
		}
		return nil
	}

	switch s.Kind {
	case KindLanguage:
		if err := need("language", string(s.Language)); err != nil {
			return nil, err
		}
		return ChangeLanguage{Language: s.Language, Framework: s.Framework}, nil
	case KindFramework:
		if err := need("framework", string(s.Framework)); err != nil {
			return nil, err
		}
		return ChangeFramework{Framework: s.Framework}, nil
	case KindEnable, KindDisable, KindToggle:
		if err := need("feature", string(s.Feature)); err != nil {
			return nil, err
		}
		switch s.Kind {
		case KindEnable:
			return Enable{Feature: s.Feature}, nil
		case KindDisable:
			return Disable{Feature: s.Feature}, nil
		}
		return Toggle{Feature: s.Feature, On: s.On}, nil
	case "":
		return nil, errs.New(errs.ErrCodeInvalidMutation, "mutation kind is required")
	}
	return nil, errs.New(errs.ErrCodeInvalidMutation, "unknown mutation kind %q", s.Kind)
}
