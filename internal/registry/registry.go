package registry

import (
	"sync"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
)

// Registry holds all registered tool descriptors and incorporation rules.
// It is an explicitly constructed instance passed by handle to the
// analyzer, router, interaction layer and orchestrator - never a global.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*ToolDescriptor
	order []string // insertion order, drives Search result ordering
	rules map[ruleKey]*IncorporationRule
}

type ruleKey struct {
	source string
	target string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]*ToolDescriptor),
		rules: make(map[ruleKey]*IncorporationRule),
	}
}

// Register validates and stores a descriptor.
// Fails with a validation error naming the first violated rule, or with a
// distinct error if the name is already taken.
func (r *Registry) Register(d *ToolDescriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return apperrors.Validationf(apperrors.CodeToolExists, "tool %q is already registered", d.Name)
	}

	stored := d.Clone()
	stored.normalize()
	r.tools[d.Name] = stored
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister registers a descriptor and panics on error.
// Use for static registration at startup.
func (r *Registry) MustRegister(d *ToolDescriptor) {
	if err := r.Register(d); err != nil {
		panic("registry: " + err.Error())
	}
}

// Patch is a partial descriptor for Update. Nil pointer fields and nil
// slices/maps are left unchanged; non-nil values replace the existing ones.
type Patch struct {
	Description     *string
	Level           *Level
	Type            *Type
	ParameterSchema map[string]any
	ResultSchema    map[string]any
	Examples        []UsageExample
	Tags            []string
	Priority        *int
	InteractsWith   []string
	Limits          *UsageLimits
	Version         *string
	UpdatedAt       *string
	Experimental    *bool
	Plugins         []string
}

// Update merges the patch into the named descriptor and re-validates the
// merged result before committing. Nothing changes on failure.
func (r *Registry) Update(name string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tools[name]
	if !ok {
		return apperrors.NotFound(apperrors.CodeToolNotFound, "tool not found: "+name)
	}

	merged := existing.Clone()
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Level != nil {
		merged.Level = *patch.Level
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.ParameterSchema != nil {
		merged.ParameterSchema = patch.ParameterSchema
	}
	if patch.ResultSchema != nil {
		merged.ResultSchema = patch.ResultSchema
	}
	if patch.Examples != nil {
		merged.Examples = patch.Examples
	}
	if patch.Tags != nil {
		merged.Tags = patch.Tags
	}
	if patch.Priority != nil {
		merged.Priority = *patch.Priority
	}
	if patch.InteractsWith != nil {
		merged.InteractsWith = patch.InteractsWith
	}
	if patch.Limits != nil {
		merged.Limits = patch.Limits
	}
	if patch.Version != nil {
		merged.Version = *patch.Version
	}
	if patch.UpdatedAt != nil {
		merged.UpdatedAt = *patch.UpdatedAt
	}
	if patch.Experimental != nil {
		merged.Experimental = *patch.Experimental
	}
	if patch.Plugins != nil {
		merged.Plugins = patch.Plugins
	}

	if err := merged.Validate(); err != nil {
		return err
	}

	merged.normalize()
	r.tools[name] = merged
	return nil
}

// Unregister removes the descriptor and cascades: every incorporation rule
// where this tool is source or target is removed, and the name is dropped
// from every other descriptor's interactsWith set.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return apperrors.NotFound(apperrors.CodeToolNotFound, "tool not found: "+name)
	}

	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	for key := range r.rules {
		if key.source == name || key.target == name {
			delete(r.rules, key)
		}
	}

	for _, d := range r.tools {
		d.InteractsWith = removeString(d.InteractsWith, name)
	}

	return nil
}

// Get returns a copy of the named descriptor, or nil if unregistered.
func (r *Registry) Get(name string) *ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tools[name]
	if !ok {
		return nil
	}
	return d.Clone()
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns all registered tool names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns copies of all descriptors in insertion order.
func (r *Registry) All() []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Clone())
	}
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
