package analyzer

import (
	"strings"

	"github.com/mentat-ai/mentat/internal/registry"
)

// scoreTool computes one tool's confidence in [0,1] for an analysis.
func (a *Analyzer) scoreTool(d *registry.ToolDescriptor, analysis *Analysis, recentCount int) float64 {
	conf := 0.0

	if complexityLevel[analysis.Complexity] == d.Level {
		conf += a.cfg.LevelMatchBonus
	}

	for _, name := range typeAffinity[analysis.Type] {
		if name == d.Name {
			conf += a.cfg.TypeAffinityBonus
			break
		}
	}

	conf += a.keywordAffinity(d, analysis.Keywords)

	if selfMentioned(d.Name, analysis.Keywords) {
		conf += a.cfg.SelfMentionBonus
	}

	if recentCount > 0 && a.cfg.RecencyCap > 0 {
		n := recentCount
		if n > a.cfg.RecencyCap {
			n = a.cfg.RecencyCap
		}
		conf += a.cfg.RecencyMax * float64(n) / float64(a.cfg.RecencyCap)
	}

	if conf > 1 {
		conf = 1
	}
	return conf
}

// keywordAffinity is proportional to overlap between the request keywords
// and the tool's keyword list. Keywords appearing twice (domain-signal
// terms) count twice.
func (a *Analyzer) keywordAffinity(d *registry.ToolDescriptor, keywords []string) float64 {
	list := toolKeywords[d.Name]
	if len(list) == 0 {
		list = d.Tags
	}
	if len(list) == 0 {
		return 0
	}

	counts := make(map[string]int, len(keywords))
	for _, k := range keywords {
		counts[k]++
	}

	matches := 0
	for _, term := range list {
		matches += counts[term]
	}

	ratio := float64(matches) / float64(len(list))
	if ratio > 1 {
		ratio = 1
	}
	return a.cfg.KeywordAffinityMax * ratio
}

// selfMentioned reports whether every word of the tool's own name appears
// among the extracted keywords.
func selfMentioned(name string, keywords []string) bool {
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		seen[k] = true
	}

	parts := strings.Split(name, "_")
	found := false
	for _, p := range parts {
		if len(p) <= 2 {
			continue
		}
		if !seen[p] {
			return false
		}
		found = true
	}
	return found
}
