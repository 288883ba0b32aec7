package project

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/stackforge/pkg/buildinfo"
	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// GenerationConfig is the document handed to the code generator.
type GenerationConfig struct {
	ProjectID   string           `json:"projectId"`
	Project     string           `json:"project"`
	Description string           `json:"description,omitempty"`
	Language    target.Language  `json:"language"`
	Framework   target.Framework `json:"framework"`
	Features    []feature.Key    `json:"features"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Generator   string           `json:"generator"`
}

// Export builds the generation config for p. It refuses to export a
// configuration that breaks the feature invariant, so the generator only
// ever sees consistent input.
func Export(eng *engine.Engine, p *Project, now time.Time) (*GenerationConfig, error) {
	violations, err := eng.Check(p.Input())
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidProject, "project %s is inconsistent: %s", p.Name, strings.Join(msgs, "; "))
	}

	enabled := p.EnabledFeatures(eng.Catalog())
	if enabled == nil {
		enabled = []feature.Key{}
	}
	return &GenerationConfig{
		ProjectID:   p.ID,
		Project:     p.Name,
		Description: p.Description,
		Language:    p.Language,
		Framework:   p.Framework,
		Features:    enabled,
		GeneratedAt: now.UTC(),
		Generator:   buildinfo.Generator(),
	}, nil
}

// WriteJSON writes the config as indented JSON.
func (g *GenerationConfig) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
