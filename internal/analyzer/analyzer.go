// Package analyzer turns a raw request into a structured analysis.
//
// Analysis flow:
// 1. Normalize the request to text
// 2. Tokenize and extract keywords (domain-signal terms counted twice)
// 3. Assign domain, request type, and complexity by fixed heuristics
// 4. Score every registered tool into a ranked candidate list
package analyzer

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/mentat-ai/mentat/internal/config"
	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/registry"
)

// RequestType is the coarse intent category of a request.
type RequestType string

const (
	RequestAnalysis    RequestType = "analysis"
	RequestDecision    RequestType = "decision"
	RequestCreation    RequestType = "creation"
	RequestInformation RequestType = "information"
	RequestOther       RequestType = "other"
)

// Complexity buckets a request by how much reasoning it likely needs.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Candidate is one tool's scored suitability for a request.
type Candidate struct {
	Tool       string  `json:"tool"`
	Confidence float64 `json:"confidence"` // 0-1
}

// Analysis is the structured view of a raw request.
type Analysis struct {
	Text       string      `json:"text"`
	Keywords   []string    `json:"keywords"`
	Domain     string      `json:"domain,omitempty"` // unset when no domain scores high enough
	Type       RequestType `json:"type"`
	Complexity Complexity  `json:"complexity"`
	Candidates []Candidate `json:"candidates"`
}

// Analyzer scores requests against the registered tool set.
type Analyzer struct {
	reg *registry.Registry
	cfg config.ScoringConfig
}

// New creates an analyzer over the given registry.
func New(reg *registry.Registry, cfg config.ScoringConfig) *Analyzer {
	return &Analyzer{reg: reg, cfg: cfg}
}

// Analyze normalizes, tokenizes, and classifies a request, then ranks every
// registered tool by confidence. The optional context map may carry a
// "recentToolUsage" count map that feeds the recency bonus.
func (a *Analyzer) Analyze(request any, reqContext map[string]any) (*Analysis, error) {
	text, err := normalizeRequest(request)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)
	keywords := extractKeywords(lower)

	analysis := &Analysis{
		Text:       text,
		Keywords:   keywords,
		Domain:     detectDomain(keywords, a.cfg.DomainScoreThreshold),
		Type:       detectRequestType(lower),
		Complexity: a.detectComplexity(text, keywords),
	}
	analysis.Candidates = a.scoreCandidates(analysis, reqContext)
	return analysis, nil
}

// normalizeRequest reduces any request shape to plain text. Objects with a
// "text" or "query" string field use that field; anything else is
// serialized whole.
func normalizeRequest(request any) (string, error) {
	switch r := request.(type) {
	case nil:
		return "", apperrors.Validation(apperrors.CodeRequestInvalid, "request must not be empty")
	case string:
		if strings.TrimSpace(r) == "" {
			return "", apperrors.Validation(apperrors.CodeRequestInvalid, "request must not be empty")
		}
		return r, nil
	case map[string]any:
		for _, field := range []string{"text", "query"} {
			if v, ok := r[field].(string); ok && strings.TrimSpace(v) != "" {
				return v, nil
			}
		}
	}

	raw, err := json.Marshal(request)
	if err != nil {
		return "", apperrors.Validation(apperrors.CodeRequestInvalid, "request is not serializable")
	}
	text := string(raw)
	if text == "" || text == "{}" || text == "null" {
		return "", apperrors.Validation(apperrors.CodeRequestInvalid, "request must not be empty")
	}
	return text, nil
}

// extractKeywords tokenizes lowered text and appends any domain-signal
// terms found in the text a second time, deliberately over-weighting them
// for downstream scoring.
func extractKeywords(lower string) []string {
	var keywords []string
	for _, tok := range strings.Fields(stripPunctuation(lower)) {
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		keywords = append(keywords, tok)
	}
	for _, term := range signalTerms {
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
		}
	}
	return keywords
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == ' ', r == '\t', r == '\n':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// detectDomain scores each fixed domain by keyword overlap and returns the
// best one, or "" when nothing reaches the threshold.
func detectDomain(keywords []string, threshold int) string {
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		seen[k] = true
	}

	best, bestScore := "", 0
	for _, d := range domainOrder {
		score := 0
		for _, term := range domainKeywords[d] {
			if seen[term] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	if bestScore < threshold {
		return ""
	}
	return best
}

// detectRequestType walks the fixed-priority rule cascade; the first rule
// with a matching term wins.
func detectRequestType(lower string) RequestType {
	for _, rule := range typeCascade {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.typ
			}
		}
	}
	return RequestOther
}

// detectComplexity sums three independent 0/1/2 sub-scores and buckets the
// total.
func (a *Analyzer) detectComplexity(text string, keywords []string) Complexity {
	score := 0

	switch n := len(text); {
	case n < 100:
	case n < 500:
		score++
	default:
		score += 2
	}

	switch n := len(keywords); {
	case n < 10:
	case n < 30:
		score++
	default:
		score += 2
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, term := range complexTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	switch {
	case matches == 0:
	case matches <= 2:
		score++
	default:
		score += 2
	}

	switch {
	case score < a.cfg.ComplexityMediumCutoff:
		return ComplexityLow
	case score < a.cfg.ComplexityHighCutoff:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

// scoreCandidates computes a confidence for every registered tool, drops
// the ones below the floor, and sorts the rest descending.
func (a *Analyzer) scoreCandidates(analysis *Analysis, reqContext map[string]any) []Candidate {
	descriptors := a.reg.All()
	recent := recentUsage(reqContext)

	candidates := make([]Candidate, 0, len(descriptors))
	for _, d := range descriptors {
		conf := a.scoreTool(d, analysis, recent[d.Name])
		if conf < a.cfg.MinCandidateConfidence {
			continue
		}
		candidates = append(candidates, Candidate{Tool: d.Name, Confidence: conf})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// recentUsage reads the optional "recentToolUsage" count map out of the
// request context, tolerating both typed and JSON-decoded shapes.
func recentUsage(reqContext map[string]any) map[string]int {
	if reqContext == nil {
		return nil
	}
	switch m := reqContext["recentToolUsage"].(type) {
	case map[string]int:
		return m
	case map[string]any:
		out := make(map[string]int, len(m))
		for name, v := range m {
			switch n := v.(type) {
			case int:
				out[name] = n
			case float64:
				out[name] = int(n)
			}
		}
		return out
	}
	return nil
}
