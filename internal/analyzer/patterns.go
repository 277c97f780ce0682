package analyzer

import "github.com/mentat-ai/mentat/internal/registry"

// stopWords are discarded during tokenization.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "had": true, "how": true, "man": true, "new": true,
	"now": true, "old": true, "see": true, "two": true, "way": true,
	"who": true, "did": true, "get": true, "let": true, "say": true,
	"she": true, "too": true, "use": true, "that": true, "with": true,
	"have": true, "this": true, "will": true, "your": true, "from": true,
	"they": true, "know": true, "want": true, "been": true, "good": true,
	"much": true, "some": true, "them": true, "than": true, "then": true,
	"what": true, "when": true, "where": true, "which": true, "would": true,
	"could": true, "should": true, "there": true, "their": true,
	"about": true, "into": true, "more": true, "other": true, "these": true,
}

// signalTerms are appended to the keyword list a second time when present
// anywhere in the normalized text. The double weight is intentional.
var signalTerms = []string{
	"analyze", "analysis", "debug", "brainstorm", "decide", "decision",
	"create", "design", "evaluate", "compare", "investigate", "explain",
	"understand", "solve", "plan", "reason", "think",
}

// domainOrder fixes the tie-break order for domain scoring.
var domainOrder = []string{"tech", "business", "science", "personal", "education"}

var domainKeywords = map[string][]string{
	"tech": {
		"code", "software", "bug", "program", "api", "server", "database",
		"algorithm", "computer", "app", "debug", "deploy", "test", "error",
		"function", "system", "network", "framework",
	},
	"business": {
		"market", "revenue", "customer", "sales", "product", "strategy",
		"profit", "startup", "company", "budget", "pricing", "growth",
		"investment", "competitor",
	},
	"science": {
		"experiment", "hypothesis", "research", "theory", "data",
		"measurement", "study", "observation", "evidence", "physics",
		"biology", "chemistry", "statistics",
	},
	"personal": {
		"relationship", "family", "health", "career", "habit", "friend",
		"feeling", "stress", "goal", "life", "motivation", "balance",
	},
	"education": {
		"learn", "teach", "course", "student", "school", "lesson", "exam",
		"curriculum", "study", "homework", "university", "tutorial",
	},
}

// typeCascade is the fixed-priority request-type rule list; the first rule
// with any matching term wins.
var typeCascade = []struct {
	typ   RequestType
	terms []string
}{
	{RequestAnalysis, []string{
		"analyze", "analysis", "why", "understand", "investigate",
		"examine", "debug", "root cause", "diagnose",
	}},
	{RequestDecision, []string{
		"should i", "decide", "decision", "choose", "compare", "versus",
		" vs ", "option", "trade-off", "tradeoff",
	}},
	{RequestCreation, []string{
		"create", "brainstorm", "generate", "design", "invent", "idea",
		"come up with", "imagine", "write",
	}},
	{RequestInformation, []string{
		"what is", "what are", "when", "where", "who", "describe",
		"explain", "tell me", "information",
	}},
}

// complexTerms count toward the terminology sub-score of complexity.
var complexTerms = []string{
	"architecture", "trade-off", "tradeoff", "scalability", "distributed",
	"optimization", "concurrency", "dependency", "constraint",
	"interdependent", "multi-step", "systemic", "ambiguous", "uncertainty",
	"stakeholder", "edge case",
}

// complexityLevel maps a complexity bucket to the thinking level best
// suited for it.
var complexityLevel = map[Complexity]registry.Level{
	ComplexityLow:    registry.LevelFoundation,
	ComplexityMedium: registry.LevelSpecialized,
	ComplexityHigh:   registry.LevelIntegrated,
}

// typeAffinity is the fixed request-type to tool-name allow-list used for
// the type-affinity bonus.
var typeAffinity = map[RequestType][]string{
	RequestAnalysis:    {"mental_model", "debugging_approach", "sequential_thinking"},
	RequestDecision:    {"decision_framework", "mental_model"},
	RequestCreation:    {"brainstorming", "creative_thinking"},
	RequestInformation: {"mental_model", "sequential_thinking"},
}

// toolKeywords is the fixed per-tool keyword list for the keyword-affinity
// bonus. Tools without an entry fall back to their descriptor tags.
var toolKeywords = map[string][]string{
	"mental_model": {
		"model", "framework", "principle", "understand", "concept",
		"perspective", "analyze",
	},
	"debugging_approach": {
		"debug", "bug", "error", "fix", "issue", "problem", "broken",
		"failure", "diagnose",
	},
	"brainstorming": {
		"brainstorm", "idea", "ideas", "generate", "creative", "options",
		"possibilities",
	},
	"decision_framework": {
		"decide", "decision", "choose", "compare", "option", "criteria",
		"weigh", "evaluate",
	},
	"creative_thinking": {
		"creative", "imagine", "novel", "invent", "original", "design",
		"unconventional",
	},
	"sequential_thinking": {
		"step", "steps", "sequence", "plan", "reason", "think", "chain",
		"process",
	},
}
