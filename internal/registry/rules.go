package registry

import (
	apperrors "github.com/mentat-ai/mentat/internal/errors"
)

// MergeFunc combines a source tool's cached results with a target tool's
// result. It is a typed callback supplied at rule-registration time; no
// textual condition language exists anywhere in the engine.
type MergeFunc func(sourceResults []any, targetResult any) (any, error)

// ConditionFunc decides whether one cached source result qualifies for
// incorporation into the target.
type ConditionFunc func(sourceResult any) bool

// IncorporationRule describes how one tool's cached output merges into
// another tool's result. Merge and Conditions are both optional: a rule
// with neither still declares the relationship, and the incorporation
// system falls back to its trivial-accept policy.
type IncorporationRule struct {
	Source     string
	Target     string
	Merge      MergeFunc
	Conditions []ConditionFunc
}

// RegisterIncorporationRule stores a rule between two already-registered
// tools and updates both descriptors' interactsWith sets symmetrically.
func (r *Registry) RegisterIncorporationRule(source, target string, rule *IncorporationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.tools[source]
	if !ok {
		return apperrors.NotFound(apperrors.CodeToolNotFound, "incorporation rule source not registered: "+source)
	}
	tgt, ok := r.tools[target]
	if !ok {
		return apperrors.NotFound(apperrors.CodeToolNotFound, "incorporation rule target not registered: "+target)
	}
	if source == target {
		return apperrors.Validation(apperrors.CodeRuleInvalid, "incorporation rule source and target must differ")
	}

	stored := &IncorporationRule{Source: source, Target: target}
	if rule != nil {
		stored.Merge = rule.Merge
		stored.Conditions = append([]ConditionFunc(nil), rule.Conditions...)
	}
	r.rules[ruleKey{source: source, target: target}] = stored

	if !containsString(src.InteractsWith, target) {
		src.InteractsWith = append(src.InteractsWith, target)
	}
	if !containsString(tgt.InteractsWith, source) {
		tgt.InteractsWith = append(tgt.InteractsWith, source)
	}

	return nil
}

// RuleFor returns the rule registered for (source, target), or nil.
func (r *Registry) RuleFor(source, target string) *IncorporationRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[ruleKey{source: source, target: target}]
}

// RuleCount returns the number of registered incorporation rules.
func (r *Registry) RuleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
