package registry

import "strings"

// Filter selects descriptors by AND-ing every provided dimension.
// Zero values mean "don't filter on this dimension".
type Filter struct {
	// Level matches the descriptor's thinking level (aliases accepted).
	Level Level

	// Type matches the descriptor's tool type.
	Type Type

	// Tags must all be present on the descriptor.
	Tags []string

	// Query is a case-insensitive substring matched against name or
	// description.
	Query string

	// InteractsWith members must all be present in the descriptor's set.
	InteractsWith []string

	// MinPriority/MaxPriority bound the priority range. MaxPriority zero
	// means unbounded.
	MinPriority int
	MaxPriority int

	// Experimental, when set, requires the flag to equal its value.
	Experimental *bool

	// Plugins must all be declared by the descriptor.
	Plugins []string
}

// Search returns copies of every descriptor matching all provided filter
// dimensions, in registry insertion order.
func (r *Registry) Search(f Filter) []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ToolDescriptor
	for _, name := range r.order {
		d := r.tools[name]
		if matches(d, f) {
			out = append(out, d.Clone())
		}
	}
	return out
}

func matches(d *ToolDescriptor, f Filter) bool {
	if f.Level != "" {
		lvl, ok := ParseLevel(string(f.Level))
		if !ok || d.Level != lvl {
			return false
		}
	}
	if f.Type != "" {
		typ, ok := ParseType(string(f.Type))
		if !ok || d.Type != typ {
			return false
		}
	}
	for _, tag := range f.Tags {
		if !containsString(d.Tags, tag) {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Description), q) {
			return false
		}
	}
	for _, other := range f.InteractsWith {
		if !containsString(d.InteractsWith, other) {
			return false
		}
	}
	if d.Priority < f.MinPriority {
		return false
	}
	if f.MaxPriority > 0 && d.Priority > f.MaxPriority {
		return false
	}
	if f.Experimental != nil && d.Experimental != *f.Experimental {
		return false
	}
	for _, plugin := range f.Plugins {
		if !containsString(d.Plugins, plugin) {
			return false
		}
	}
	return true
}
