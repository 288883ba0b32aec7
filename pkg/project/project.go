// Package project holds the project document that owns a feature
// configuration, its export as a generation config, and the binder that
// routes user mutations through the engine.
//
// # Lifecycle
//
// A project is created with every feature disabled:
//
//	p, err := project.New(eng, "orders", target.Java, "")
//
// It is then changed only by committing resolver results, usually through a
// [Binder]. Stores in the store subpackage persist it; after loading, call
// [Project.Repair] so documents written by older tables or edited by hand are
// brought back to a consistent state.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

// Project is the persisted project document.
type Project struct {
	ID          string           `json:"id" bson:"_id"`
	Name        string           `json:"name" bson:"name"`
	Description string           `json:"description,omitempty" bson:"description,omitempty"`
	Language    target.Language  `json:"language" bson:"language"`
	Framework   target.Framework `json:"framework" bson:"framework"`
	Features    feature.State    `json:"features" bson:"features"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" bson:"updated_at"`
}

// New creates a project targeting (lang, fw) with all features disabled.
// An empty fw selects the language's default framework.
func New(eng *engine.Engine, name string, lang target.Language, fw target.Framework) (*Project, error) {
	name = strings.TrimSpace(name)
	if err := errs.ValidateProjectName(name); err != nil {
		return nil, err
	}
	if fw == "" {
		if !eng.Targets().HasLanguage(lang) {
			return nil, errs.New(errs.ErrCodeInvalidLanguage, "unknown language %q", lang)
		}
		fw, _ = eng.Targets().DefaultFramework(lang)
	}
	if err := eng.Targets().Check(lang, fw); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Language:  lang,
		Framework: fw,
		Features:  eng.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Input returns the project's configuration as resolver input.
func (p *Project) Input() resolver.Input {
	return resolver.Input{Language: p.Language, Framework: p.Framework, State: p.Features}
}

// Commit stores an accepted resolution in the project. Rejected results are
// ignored and reported as false.
func (p *Project) Commit(res resolver.Result) bool {
	if res.Rejected() {
		return false
	}
	p.Language = res.Language
	p.Framework = res.Framework
	p.Features = res.State
	p.UpdatedAt = time.Now().UTC()
	return true
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Features = p.Features.Clone()
	return &c
}

// EnabledFeatures returns the enabled features in catalog order.
func (p *Project) EnabledFeatures(c *feature.Catalog) []feature.Key {
	return p.Features.EnabledKeys(c)
}

// Repair brings a loaded project in line with eng: it validates the target,
// drops unknown features, fills in missing ones and switches off whatever
// breaks the invariant. It returns the changes it made.
func (p *Project) Repair(ctx context.Context, eng *engine.Engine) ([]resolver.Change, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidProject, err, "project id %q", p.ID)
	}
	if err := errs.ValidateProjectName(p.Name); err != nil {
		return nil, err
	}
	res, err := eng.Normalize(ctx, p.Input())
	if err != nil {
		return nil, errs.Wrap(errs.GetCode(err), err, "project %s", p.Name)
	}
	changed := len(res.Changes) > 0 || len(p.Features) != len(res.State)
	p.Features = res.State
	if changed {
		p.UpdatedAt = time.Now().UTC()
	}
	return res.Changes, nil
}
