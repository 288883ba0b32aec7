package resolver

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// ChangeKind classifies why the resolver forced a feature on or off.
type ChangeKind int

const (
	// Unsupported: switched off because the target does not support it.
	Unsupported ChangeKind = iota
	// Required: switched on because the toggled feature needs it.
	Required
	// Dependent: switched off because a feature it needs was switched off.
	Dependent
)

var kindNames = [...]string{
	Unsupported: "unsupported",
	Required:    "required",
	Dependent:   "dependent",
}

func (k ChangeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k ChangeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *ChangeKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = ChangeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown change kind %q", b)
}

// Change is one forced side effect of a resolution.
//
// Cause names what triggered the change: the framework for [Unsupported],
// the toggled feature for [Required] and the prerequisite that went away for
// [Dependent].
type Change struct {
	Feature feature.Key `json:"feature"`
	From    bool        `json:"from"`
	To      bool        `json:"to"`
	Kind    ChangeKind  `json:"kind"`
	Cause   string      `json:"cause"`
}

// Reason renders the change cause for notifications, for example
// "required by passwordReset".
func (c Change) Reason() string {
	switch c.Kind {
	case Unsupported:
		return "unsupported by " + c.Cause
	case Required:
		return "required by " + c.Cause
	case Dependent:
		return "requires " + c.Cause
	}
	return c.Cause
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s (%s)", onOff(c.To), c.Feature, c.Reason())
}

func onOff(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// Rejection explains why an enable was refused. Blocking lists every member
// of the feature's dependency closure (the feature itself included) that the
// target does not support.
type Rejection struct {
	Feature  feature.Key   `json:"feature"`
	Blocking []feature.Key `json:"blocking"`
}

func (r *Rejection) String() string {
	names := make([]string, len(r.Blocking))
	for i, k := range r.Blocking {
		names[i] = string(k)
	}
	return fmt.Sprintf("cannot enable %s: unsupported %s", r.Feature, strings.Join(names, ", "))
}

// Input is the configuration a mutation is applied to.
type Input struct {
	Language  target.Language
	Framework target.Framework
	State     feature.State
}

// Result is the outcome of a resolution. When Rejection is set, State equals
// the input state and Changes is empty.
type Result struct {
	Language  target.Language
	Framework target.Framework
	State     feature.State
	Changes   []Change
	Rejection *Rejection
}

// Rejected reports whether the mutation was refused.
func (r Result) Rejected() bool { return r.Rejection != nil }

// Input returns the result as the input for a follow-up mutation.
func (r Result) Input() Input {
	return Input{Language: r.Language, Framework: r.Framework, State: r.State}
}

// Disabled returns the features the cascade switched off, in change order.
func (r Result) Disabled() []feature.Key { return r.filter(false) }

// Enabled returns the features the cascade switched on, in change order.
func (r Result) Enabled() []feature.Key { return r.filter(true) }

func (r Result) filter(to bool) []feature.Key {
	var out []feature.Key
	for _, c := range r.Changes {
		if c.To == to {
			out = append(out, c.Feature)
		}
	}
	return out
}

// Summary renders a one-line notification such as
// "2 features were disabled, 1 feature was enabled". It is empty when
// nothing was forced.
func (r Result) Summary() string {
	var parts []string
	if n := len(r.Disabled()); n > 0 {
		parts = append(parts, countFeatures(n, "disabled"))
	}
	if n := len(r.Enabled()); n > 0 {
		parts = append(parts, countFeatures(n, "enabled"))
	}
	return strings.Join(parts, ", ")
}

func countFeatures(n int, verb string) string {
	if n == 1 {
		return "1 feature was " + verb
	}
	return fmt.Sprintf("%d features were %s", n, verb)
}
