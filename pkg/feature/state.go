package feature

// State is the per-project on/off flag of every feature.
//
// Missing keys read as disabled, so a nil State behaves like an all-false
// one. States are treated as values: functions that derive a new state
// return a fresh map and leave their input untouched.
type State map[Key]bool

// NewState returns the all-false default state for every key in c.
func NewState(c *Catalog) State {
	s := make(State, c.Len())
	for _, k := range c.Keys() {
		s[k] = false
	}
	return s
}

// Enabled reports whether k is switched on.
func (s State) Enabled(k Key) bool { return s[k] }

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy of s with k set to on.
func (s State) With(k Key, on bool) State {
	out := s.Clone()
	out[k] = on
	return out
}

// EnabledKeys returns the enabled keys in catalog order.
func (s State) EnabledKeys(c *Catalog) []Key {
	var keys []Key
	for _, k := range c.Keys() {
		if s[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// EnabledSet returns the enabled keys as a set.
func (s State) EnabledSet() Set {
	out := make(Set)
	for k, on := range s {
		if on {
			out[k] = struct{}{}
		}
	}
	return out
}

// Equal reports whether s and other enable exactly the same keys.
// A key mapped to false and an absent key are considered equal.
func (s State) Equal(other State) bool {
	for k, on := range s {
		if on != other[k] {
			return false
		}
	}
	for k, on := range other {
		if on != s[k] {
			return false
		}
	}
	return true
}

// Unknown returns the keys of s that are not part of c, sorted.
func (s State) Unknown(c *Catalog) []Key {
	var keys []Key
	for k := range s {
		if !c.Has(k) {
			keys = append(keys, k)
		}
	}
	c.Sort(keys)
	return keys
}
