// Package engine bundles the feature catalog, targets, support matrix,
// dependency graph and resolver built from one set of static tables.
//
// An [Engine] is constructed once at startup and is read-only afterwards:
//
//	eng, err := engine.Default()
//	if err != nil {
//	    return err // the shipped tables are broken
//	}
//	res, err := eng.Resolve(ctx, in, resolver.Enable{Feature: feature.PasswordReset})
//
// [Load] and [LoadFile] build an engine from custom TOML tables. All three
// constructors validate the tables and fail on the first authoring defect:
// unknown keys, dependency cycles, or frameworks that both add and remove a
// feature.
package engine

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackforge/pkg/compat"
	"github.com/matzehuels/stackforge/pkg/depgraph"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/observability"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

//go:embed default.toml
var defaultTables []byte

// DefaultSource names the embedded tables in logs and hooks.
const DefaultSource = "embedded"

// Engine is the in-process feature compatibility engine.
// It is immutable and safe for concurrent use.
type Engine struct {
	catalog  *feature.Catalog
	targets  *target.Registry
	matrix   *compat.Matrix
	graph    *depgraph.Graph
	resolver *resolver.Resolver
	tables   Tables
	source   string
	logger   *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output. A nil logger falls back
// to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSource sets the name reported for the tables in logs and hooks.
func WithSource(source string) Option {
	return func(e *Engine) { e.source = source }
}

// Default builds the engine from the tables embedded in the binary.
func Default(opts ...Option) (*Engine, error) {
	return Load(bytes.NewReader(defaultTables), append([]Option{WithSource(DefaultSource)}, opts...)...)
}

// DefaultTables returns the embedded TOML tables.
func DefaultTables() []byte { return bytes.Clone(defaultTables) }

// LoadFile builds the engine from a TOML file.
func LoadFile(path string, opts ...Option) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidTables, err, "open tables")
	}
	defer f.Close()
	return Load(f, append([]Option{WithSource(path)}, opts...)...)
}

// Load builds the engine from TOML tables read from r.
func Load(r io.Reader, opts ...Option) (*Engine, error) {
	start := time.Now()
	e := &Engine{source: "reader", logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}

	t, err := DecodeTables(r)
	if err == nil {
		err = e.init(t)
	}
	observability.Engine().OnTablesLoad(context.Background(), e.source, len(t.Features), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded feature tables",
		"source", e.source,
		"features", e.catalog.Len(),
		"languages", len(e.targets.Languages()),
		"frameworks", len(e.targets.AllFrameworks()),
		"edges", e.graph.EdgeCount())
	return e, nil
}

// New builds the engine from already decoded tables.
func New(t Tables, opts ...Option) (*Engine, error) {
	e := &Engine{source: "tables", logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.init(t); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) init(t Tables) error {
	b, err := t.build()
	if err != nil {
		return err
	}
	r, err := resolver.New(b.matrix, b.graph)
	if err != nil {
		return err
	}
	e.catalog, e.targets, e.matrix, e.graph, e.resolver = b.catalog, b.targets, b.matrix, b.graph, r
	e.tables = t
	return nil
}

// Catalog returns the feature catalog.
func (e *Engine) Catalog() *feature.Catalog { return e.catalog }

// Targets returns the language and framework registry.
func (e *Engine) Targets() *target.Registry { return e.targets }

// Matrix returns the support matrix.
func (e *Engine) Matrix() *compat.Matrix { return e.matrix }

// Graph returns the dependency graph.
func (e *Engine) Graph() *depgraph.Graph { return e.graph }

// Resolver returns the cascade resolver.
func (e *Engine) Resolver() *resolver.Resolver { return e.resolver }

// Tables returns the tables the engine was built from.
func (e *Engine) Tables() Tables { return e.tables }

// Source names where the tables were loaded from.
func (e *Engine) Source() string { return e.source }

// NewState returns the all-false feature state for a new project.
func (e *Engine) NewState() feature.State { return feature.NewState(e.catalog) }

// Resolve applies m to in. See [resolver.Resolver.Resolve].
func (e *Engine) Resolve(ctx context.Context, in resolver.Input, m resolver.Mutation) (resolver.Result, error) {
	start := time.Now()
	res, err := e.resolver.Resolve(in, m)
	elapsed := time.Since(start)

	name := "<nil>"
	if m != nil {
		name = m.String()
	}
	observability.Engine().OnResolve(ctx, name, len(res.Changes), res.Rejected(), elapsed, err)

	switch {
	case err != nil:
		e.logger.Debug("resolve failed", "mutation", name, "error", err)
	case res.Rejected():
		e.logger.Debug("mutation rejected",
			"mutation", name,
			"blocking", res.Rejection.Blocking)
	default:
		e.logger.Debug("resolved",
			"mutation", name,
			"language", res.Language,
			"framework", res.Framework,
			"changes", len(res.Changes),
			"duration", elapsed)
		for _, c := range res.Changes {
			e.logger.Debug("forced change", "feature", c.Feature, "enabled", c.To, "reason", c.Reason())
		}
	}
	return res, err
}

// Normalize repairs an arbitrary configuration. See
// [resolver.Resolver.Normalize].
func (e *Engine) Normalize(ctx context.Context, in resolver.Input) (resolver.Result, error) {
	res, err := e.resolver.Normalize(in)
	if err != nil {
		return res, err
	}
	if dropped := in.State.Unknown(e.catalog); len(dropped) > 0 {
		e.logger.Warn("dropped unknown features", "features", dropped)
	}
	if len(res.Changes) > 0 {
		e.logger.Debug("normalized state", "changes", len(res.Changes))
	}
	return res, nil
}

// Check lists invariant violations of in without changing it.
func (e *Engine) Check(in resolver.Input) ([]resolver.Violation, error) {
	return e.resolver.Check(in)
}

// SupportedFeatures returns the features (lang, fw) supports, in catalog
// order.
func (e *Engine) SupportedFeatures(lang target.Language, fw target.Framework) ([]feature.Key, error) {
	if err := e.targets.Check(lang, fw); err != nil {
		return nil, err
	}
	return e.matrix.Supported(lang, fw), nil
}

// UnsupportedFeatures returns the features (lang, fw) does not support, in
// catalog order. Together with SupportedFeatures it partitions the catalog.
func (e *Engine) UnsupportedFeatures(lang target.Language, fw target.Framework) ([]feature.Key, error) {
	if err := e.targets.Check(lang, fw); err != nil {
		return nil, err
	}
	return e.matrix.Unsupported(lang, fw), nil
}

// DependenciesOf returns the direct requirements of key.
func (e *Engine) DependenciesOf(key feature.Key) ([]feature.Key, error) {
	if err := e.catalog.Check(key); err != nil {
		return nil, err
	}
	return e.graph.DependenciesOf(key), nil
}

// DependentsOf returns the features that directly require key.
func (e *Engine) DependentsOf(key feature.Key) ([]feature.Key, error) {
	if err := e.catalog.Check(key); err != nil {
		return nil, err
	}
	return e.graph.DependentsOf(key), nil
}

// Explain returns why key is unavailable for (lang, fw), or "" if it is
// supported.
func (e *Engine) Explain(lang target.Language, fw target.Framework, key feature.Key) string {
	return e.matrix.Explain(lang, fw, key)
}
