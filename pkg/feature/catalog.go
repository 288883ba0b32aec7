package feature

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/stackforge/pkg/errors"
)

// Info describes a feature for display purposes.
type Info struct {
	Key         Key    // Unique identifier
	Label       string // Short human-readable name ("Mail service")
	Description string // One-line explanation, shown in tooltips
	Category    string // Grouping used by listings ("security", "messaging", ...)
}

// Catalog is the ordered, immutable enumeration of every known feature.
//
// The zero value is an empty catalog. Use [NewCatalog] to build one.
type Catalog struct {
	infos []Info
	index map[Key]int
}

// NewCatalog builds a catalog from infos, preserving their order.
// It returns an INVALID_FEATURE error when a key is malformed or declared
// twice. A missing label defaults to the key itself.
func NewCatalog(infos []Info) (*Catalog, error) {
	c := &Catalog{
		infos: make([]Info, 0, len(infos)),
		index: make(map[Key]int, len(infos)),
	}
	for _, info := range infos {
		if err := errs.ValidateFeatureKey(string(info.Key)); err != nil {
			return nil, err
		}
		if _, dup := c.index[info.Key]; dup {
			return nil, errs.New(errs.ErrCodeInvalidFeature, "duplicate feature key %q", info.Key)
		}
		if info.Label == "" {
			info.Label = string(info.Key)
		}
		c.index[info.Key] = len(c.infos)
		c.infos = append(c.infos, info)
	}
	return c, nil
}

// Len returns the number of features in the catalog.
func (c *Catalog) Len() int { return len(c.infos) }

// Keys returns every key in declaration order.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, len(c.infos))
	for i, info := range c.infos {
		keys[i] = info.Key
	}
	return keys
}

// Infos returns a copy of all feature descriptions in declaration order.
func (c *Catalog) Infos() []Info { return slices.Clone(c.infos) }

// Has reports whether key belongs to the catalog.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.index[key]
	return ok
}

// Lookup returns the description of key.
func (c *Catalog) Lookup(key Key) (Info, bool) {
	i, ok := c.index[key]
	if !ok {
		return Info{}, false
	}
	return c.infos[i], true
}

// Label returns the display label of key, or the key itself when unknown.
func (c *Catalog) Label(key Key) string {
	if info, ok := c.Lookup(key); ok {
		return info.Label
	}
	return string(key)
}

// Index returns the declaration position of key, or -1 when unknown.
func (c *Catalog) Index(key Key) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return -1
}

// Check returns an INVALID_FEATURE error when key is not part of the catalog.
func (c *Catalog) Check(key Key) error {
	if !c.Has(key) {
		return errs.New(errs.ErrCodeInvalidFeature, "unknown feature %q", key)
	}
	return nil
}

// Sort orders keys in place by catalog position. Unknown keys sort last,
// alphabetically among themselves.
func (c *Catalog) Sort(keys []Key) {
	slices.SortStableFunc(keys, func(a, b Key) int {
		ia, ib := c.Index(a), c.Index(b)
		switch {
		case ia < 0 && ib < 0:
			return cmp.Compare(a, b)
		case ia < 0:
			return 1
		case ib < 0:
			return -1
		}
		return ia - ib
	})
}
