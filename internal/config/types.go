package config

// Config is the root mentat configuration.
//
// Every heuristic constant the engine uses (scoring bonuses, confidence
// thresholds, complexity cutoffs, cache TTL, step budget) lives here so
// behavior can be tuned or tested independently of the algorithms.
type Config struct {
	Scoring ScoringConfig `toml:"scoring"`
	Routing RoutingConfig `toml:"routing"`
	Cache   CacheConfig   `toml:"cache"`
	Session SessionConfig `toml:"session"`
}

// ScoringConfig holds the analyzer's confidence weights and thresholds.
type ScoringConfig struct {
	// LevelMatchBonus is added when a tool's thinking level matches the
	// level implied by the request's complexity.
	LevelMatchBonus float64 `toml:"level_match_bonus"`

	// TypeAffinityBonus is added when the tool appears in the fixed
	// request-type allow-list.
	TypeAffinityBonus float64 `toml:"type_affinity_bonus"`

	// KeywordAffinityMax caps the bonus proportional to keyword overlap
	// with the tool's keyword list.
	KeywordAffinityMax float64 `toml:"keyword_affinity_max"`

	// SelfMentionBonus is added when the tool's own name appears among
	// the extracted keywords.
	SelfMentionBonus float64 `toml:"self_mention_bonus"`

	// RecencyMax caps the bonus proportional to recent use counts.
	RecencyMax float64 `toml:"recency_max"`

	// RecencyCap is the use count at which the recency bonus saturates.
	RecencyCap int `toml:"recency_cap"`

	// MinCandidateConfidence drops tools scoring below it from the
	// ranked candidate list.
	MinCandidateConfidence float64 `toml:"min_candidate_confidence"`

	// DomainScoreThreshold is the minimum keyword-overlap count for a
	// domain to be assigned at all.
	DomainScoreThreshold int `toml:"domain_score_threshold"`

	// ComplexityMediumCutoff / ComplexityHighCutoff bucket the summed
	// complexity sub-scores: sum < medium -> low, sum < high -> medium,
	// otherwise high.
	ComplexityMediumCutoff int `toml:"complexity_medium_cutoff"`
	ComplexityHighCutoff   int `toml:"complexity_high_cutoff"`
}

// RoutingConfig holds the router's selection knobs.
type RoutingConfig struct {
	// MinConfidence is the routing threshold. Candidates below it are
	// only used when nothing clears the bar.
	MinConfidence float64 `toml:"min_confidence"`

	// MaxRecommendations bounds the decision: one selected tool plus
	// up to MaxRecommendations-1 alternatives.
	MaxRecommendations int `toml:"max_recommendations"`

	// MainParams maps tool name to the parameter a bare-string request
	// is wrapped under. Tools not listed use DefaultMainParam.
	MainParams map[string]string `toml:"main_params"`

	// DefaultMainParam is the fallback wrapping key.
	DefaultMainParam string `toml:"default_main_param"`
}

// CacheConfig holds result-cache settings.
type CacheConfig struct {
	// TTLMillis is the default time-to-live for cached tool results.
	TTLMillis int `toml:"ttl_millis"`
}

// SessionConfig holds session loop settings.
type SessionConfig struct {
	// MaxSteps bounds the thinking loop per session.
	MaxSteps int `toml:"max_steps"`

	// TimeoutMillis is the default session timeout. Zero means no timeout.
	TimeoutMillis int `toml:"timeout_millis"`
}
