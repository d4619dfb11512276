// Package quality measures how much a rewrite improved a prompt along
// four independent dimensions. Everything here is pure and
// side-effect-free, so results are deterministic and testable without
// any provider.
package quality

import (
	"strings"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/vagueness"
)

// Thresholds each dimension must clear to count as improved.
const (
	thresholdSpecificity   = 0.1
	thresholdActionability = 0.4
	thresholdIssueCoverage = 0.5
	thresholdRelevance     = 0.5
)

// maxSpecificity is the cap of the rule classifier's specificity
// sub-score, used to normalize deltas.
const maxSpecificity = 60.0

// Scores holds the raw 0-1 measurements behind an ImprovementBreakdown.
type Scores struct {
	SpecificityGain float64
	Actionability   float64
	IssueCoverage   float64
	Relevance       float64
}

// Analyzer scores (original, enhanced) pairs.
type Analyzer struct {
	rules *vagueness.Classifier
}

// NewAnalyzer creates a quality analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{rules: vagueness.NewClassifier()}
}

// Measure computes all four dimensions and reduces them against fixed
// thresholds. originalAnalysis may be nil when no issues were recorded.
func (a *Analyzer) Measure(original, enhanced string, originalAnalysis *model.AnalysisResult) (model.ImprovementBreakdown, Scores) {
	var issues []model.VaguenessIssue
	if originalAnalysis != nil {
		issues = originalAnalysis.Issues
	}

	scores := Scores{
		SpecificityGain: a.MeasureSpecificityGain(original, enhanced),
		Actionability:   a.MeasureActionability(enhanced),
		IssueCoverage:   a.MeasureIssueCoverage(enhanced, issues),
		Relevance:       a.MeasureRelevance(original, enhanced),
	}

	return model.ImprovementBreakdown{
		AddedSpecificity: scores.SpecificityGain >= thresholdSpecificity,
		MadeActionable:   scores.Actionability >= thresholdActionability,
		AddressedIssues:  scores.IssueCoverage >= thresholdIssueCoverage,
		StayedOnTopic:    scores.Relevance >= thresholdRelevance,
	}, scores
}

// MeasureSpecificityGain is the normalized delta of the specificity
// sub-score between enhanced and original. Negative deltas clamp to 0.
func (a *Analyzer) MeasureSpecificityGain(original, enhanced string) float64 {
	delta := float64(a.rules.SpecificityScore(enhanced) - a.rules.SpecificityScore(original))
	if delta <= 0 {
		return 0
	}
	gain := delta / maxSpecificity
	if gain > 1 {
		gain = 1
	}
	return gain
}

var actionVerbs = map[string]bool{
	"implement": true, "add": true, "create": true, "refactor": true,
	"write": true, "configure": true, "migrate": true, "define": true,
	"validate": true, "test": true, "remove": true, "rename": true,
	"extract": true, "replace": true, "return": true, "build": true,
	"convert": true, "parse": true, "render": true, "deploy": true,
	"install": true, "document": true, "verify": true, "use": true,
}

var technicalNouns = map[string]bool{
	"function": true, "endpoint": true, "api": true, "database": true,
	"test": true, "tests": true, "component": true, "module": true,
	"cache": true, "schema": true, "query": true, "interface": true,
	"struct": true, "class": true, "file": true, "method": true,
	"handler": true, "middleware": true, "route": true, "table": true,
	"field": true, "type": true, "package": true, "config": true,
	"token": true, "session": true, "migration": true, "index": true,
}

var residualVagueTerms = map[string]bool{
	"somehow": true, "stuff": true, "things": true, "whatever": true,
	"nicer": true, "better": true, "everything": true,
}

// MeasureActionability scores the enhanced text alone: action verbs,
// technical-object nouns, verb+object combinations, file/line mentions,
// list structure, and clarifying questions all reward; residual vague
// language or the absence of any action verb penalizes.
func (a *Analyzer) MeasureActionability(enhanced string) float64 {
	words := tokenize(enhanced)

	hasVerb := false
	hasNoun := false
	vagueHits := 0
	for _, w := range words {
		if actionVerbs[w] {
			hasVerb = true
		}
		if technicalNouns[w] {
			hasNoun = true
		}
		if residualVagueTerms[w] {
			vagueHits++
		}
	}

	score := 0.0
	if hasVerb {
		score += 0.3
	}
	if hasNoun {
		score += 0.2
	}
	if hasVerb && hasNoun {
		score += 0.15
	}
	if a.rules.SpecificityScore(enhanced) >= 12 {
		score += 0.15
	}
	if hasListStructure(enhanced) {
		score += 0.1
	}
	if strings.Contains(enhanced, "?") {
		score += 0.1
	}

	if !hasVerb {
		score -= 0.2
	}
	score -= 0.1 * float64(vagueHits)

	return clamp01(score)
}

// MeasureIssueCoverage checks the enhanced text for category-specific
// resolution markers for each original issue, averaged across issues.
// With nothing to cover, coverage defaults to 1.
func (a *Analyzer) MeasureIssueCoverage(enhanced string, issues []model.VaguenessIssue) float64 {
	if len(issues) == 0 {
		return 1
	}

	words := tokenize(enhanced)
	covered := 0
	for _, issue := range issues {
		if a.issueCovered(issue.Type, enhanced, words) {
			covered++
		}
	}
	return float64(covered) / float64(len(issues))
}

func (a *Analyzer) issueCovered(issueType model.IssueType, enhanced string, words []string) bool {
	switch issueType {
	case model.IssueVagueVerb:
		// Covered when the rewrite uses a specific verb or introduces
		// structural nouns that pin down the action.
		for _, w := range words {
			if actionVerbs[w] || technicalNouns[w] {
				return true
			}
		}
		return false
	case model.IssueVagueReferent:
		// A named target resolves the dangling pronoun.
		for _, w := range words {
			if technicalNouns[w] {
				return true
			}
		}
		return a.hasPathOrTech(enhanced)
	case model.IssueMissingContext:
		return a.hasPathOrTech(enhanced)
	case model.IssueUnclearScope:
		return hasListStructure(enhanced) || len(words) >= 15
	default:
		return false
	}
}

// Relevance convention: originals too short to carry meaning get a
// neutral score.
const (
	minOriginalLength = 5
	neutralRelevance  = 0.5
)

// MeasureRelevance is the fraction of the original's significant terms
// whose stems survive into the enhanced text, with a small bonus for
// proportionate length expansion.
func (a *Analyzer) MeasureRelevance(original, enhanced string) float64 {
	if len(strings.TrimSpace(original)) < minOriginalLength {
		return neutralRelevance
	}

	significant := significantTerms(original)
	if len(significant) == 0 {
		return neutralRelevance
	}

	enhancedStems := make([]string, 0)
	for _, w := range tokenize(enhanced) {
		enhancedStems = append(enhancedStems, stem(w))
	}

	preserved := 0
	for _, term := range significant {
		if stemPresent(stem(term), enhancedStems) {
			preserved++
		}
	}

	score := float64(preserved) / float64(len(significant))

	// Proportionate expansion suggests elaboration rather than drift.
	ratio := float64(len(enhanced)) / float64(len(original))
	if ratio >= 1.5 && ratio <= 10 {
		score += 0.1
	}

	return clamp01(score)
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"to": true, "of": true, "in": true, "on": true, "for": true,
	"with": true, "is": true, "are": true, "be": true, "it": true,
	"this": true, "that": true, "at": true, "by": true, "from": true,
	"as": true, "my": true, "me": true, "please": true, "can": true,
	"you": true, "should": true, "do": true, "so": true, "if": true,
}

func significantTerms(text string) []string {
	terms := make([]string, 0)
	seen := make(map[string]bool)
	for _, w := range tokenize(text) {
		if len(w) < 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}

// stem is deliberately naive suffix stripping; both sides of a
// comparison go through it, so only relative agreement matters.
func stem(word string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= 3 {
			return word[:len(word)-len(suffix)]
		}
	}
	return word
}

// stemPresent matches exact stems and prefix elaborations, so "app"
// still counts when the rewrite says "application".
func stemPresent(target string, stems []string) bool {
	for _, s := range stems {
		if s == target {
			return true
		}
		if len(target) >= 3 && strings.HasPrefix(s, target) {
			return true
		}
	}
	return false
}

func (a *Analyzer) hasPathOrTech(text string) bool {
	return a.rules.SpecificityScore(text) >= 8
}

func hasListStructure(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			return true
		}
		if len(trimmed) > 1 && trimmed[0] >= '0' && trimmed[0] <= '9' && (trimmed[1] == '.' || trimmed[1] == ')') {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	return fields
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
