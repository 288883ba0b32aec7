package feature

// Set is an unordered set of feature keys.
type Set map[Key]struct{}

// NewSet returns a set holding keys.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set. A nil set is empty.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Add inserts k into the set.
func (s Set) Add(k Key) { s[k] = struct{}{} }

// Len returns the number of keys in the set.
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union returns the keys present in s or other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Intersect returns the keys present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keys in catalog order.
func (s Set) Sorted(c *Catalog) []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	c.Sort(keys)
	return keys
}
