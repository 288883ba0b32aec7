package engine

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackforge/pkg/compat"
	"github.com/matzehuels/stackforge/pkg/depgraph"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/target"
)

// Tables is the static configuration the engine is built from: the feature
// catalog with its requirement edges, the languages with their base
// support, and the frameworks with their overrides.
type Tables struct {
	Features   []FeatureRow   `toml:"feature"`
	Languages  []LanguageRow  `toml:"language"`
	Frameworks []FrameworkRow `toml:"framework"`
}

// FeatureRow declares one catalog entry.
type FeatureRow struct {
	Key         string   `toml:"key"`
	Label       string   `toml:"label"`
	Description string   `toml:"description,omitempty"`
	Category    string   `toml:"category,omitempty"`
	Requires    []string `toml:"requires,omitempty"`
}

// LanguageRow declares a language and its base support. Features lists the
// supported keys; when it is empty, every catalog feature not in Exclude is
// supported.
type LanguageRow struct {
	Key      string   `toml:"key"`
	Label    string   `toml:"label"`
	Features []string `toml:"features,omitempty"`
	Exclude  []string `toml:"exclude,omitempty"`
}

// FrameworkRow declares a framework and its support overrides.
type FrameworkRow struct {
	Key      string   `toml:"key"`
	Label    string   `toml:"label"`
	Language string   `toml:"language"`
	Add      []string `toml:"add,omitempty"`
	Remove   []string `toml:"remove,omitempty"`
}

// DecodeTables parses TOML tables from r. Unknown keys in the document are
// rejected so typos in the tables fail loudly.
func DecodeTables(r io.Reader) (Tables, error) {
	var t Tables
	md, err := toml.NewDecoder(r).Decode(&t)
	if err != nil {
		return Tables{}, errs.Wrap(errs.ErrCodeInvalidTables, err, "decode tables")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Tables{}, errs.New(errs.ErrCodeInvalidTables, "unknown table key %q", undecoded[0].String())
	}
	return t, nil
}

// Encode writes the tables as TOML.
func (t Tables) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(t)
}

// String renders the tables as TOML.
func (t Tables) String() string {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return ""
	}
	return buf.String()
}

type built struct {
	catalog *feature.Catalog
	targets *target.Registry
	matrix  *compat.Matrix
	graph   *depgraph.Graph
}

// build validates the tables and constructs every immutable component.
func (t Tables) build() (*built, error) {
	infos := make([]feature.Info, len(t.Features))
	requires := make(map[feature.Key][]feature.Key)
	for i, row := range t.Features {
		key := feature.Key(row.Key)
		infos[i] = feature.Info{
			Key:         key,
			Label:       row.Label,
			Description: row.Description,
			Category:    row.Category,
		}
		if len(row.Requires) > 0 {
			requires[key] = keys(row.Requires)
		}
	}
	c, err := feature.NewCatalog(infos)
	if err != nil {
		return nil, tablesError(err, "feature catalog")
	}

	langs := make([]target.LanguageInfo, len(t.Languages))
	base := make(map[target.Language]feature.Set, len(t.Languages))
	for i, row := range t.Languages {
		lang := target.Language(row.Key)
		langs[i] = target.LanguageInfo{Name: lang, Label: row.Label}
		if len(row.Features) > 0 && len(row.Exclude) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidTables, "language %q sets both features and exclude", row.Key)
		}
		if len(row.Features) > 0 {
			base[lang] = feature.NewSet(keys(row.Features)...)
			continue
		}
		set := feature.NewSet(c.Keys()...)
		for _, k := range row.Exclude {
			if !c.Has(feature.Key(k)) {
				return nil, errs.New(errs.ErrCodeInvalidTables, "language %q excludes unknown feature %q", row.Key, k)
			}
			delete(set, feature.Key(k))
		}
		base[lang] = set
	}

	fws := make([]target.FrameworkInfo, len(t.Frameworks))
	overrides := make(map[target.Framework]compat.Override)
	for i, row := range t.Frameworks {
		fw := target.Framework(row.Key)
		fws[i] = target.FrameworkInfo{Name: fw, Label: row.Label, Language: target.Language(row.Language)}
		if len(row.Add) > 0 || len(row.Remove) > 0 {
			overrides[fw] = compat.Override{
				Add:    feature.NewSet(keys(row.Add)...),
				Remove: feature.NewSet(keys(row.Remove)...),
			}
		}
	}
	reg, err := target.NewRegistry(langs, fws)
	if err != nil {
		return nil, tablesError(err, "targets")
	}

	m, err := compat.New(c, reg, base, overrides)
	if err != nil {
		return nil, err
	}
	g, err := depgraph.New(c, requires)
	if err != nil {
		return nil, err
	}
	return &built{catalog: c, targets: reg, matrix: m, graph: g}, nil
}

func keys(raw []string) []feature.Key {
	out := make([]feature.Key, len(raw))
	for i, s := range raw {
		out[i] = feature.Key(s)
	}
	return out
}

// tablesError reports a construction failure of the static data as an
// authoring defect, keeping the original error in the chain.
func tablesError(err error, what string) error {
	if errs.GetCode(err) == errs.ErrCodeInvalidTables {
		return err
	}
	return errs.Wrap(errs.ErrCodeInvalidTables, err, "%s", what)
}
