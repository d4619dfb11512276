// Package vagueness scores prompts for under-specification using a
// rule-based classifier, an optionally trained bag-of-words model, and
// a hybrid service that blends the two.
package vagueness

import (
	"regexp"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
)

// Penalty weights for each detected condition.
const (
	penaltyVagueVerb      = 25
	penaltyVagueReferent  = 15
	penaltyMissingContext = 30
	penaltyUnclearScope   = 20
)

// vagueVerbs are verbs that name an action without saying what it is.
var vagueVerbs = map[string]bool{
	"fix": true, "make": true, "do": true, "improve": true,
	"update": true, "change": true, "handle": true, "help": true,
	"clean": true, "sort": true, "deal": true, "work": true,
	"enhance": true, "optimize": true,
}

// vagueReferents are pronouns and fillers that point at nothing.
var vagueReferents = map[string]bool{
	"it": true, "this": true, "that": true, "thing": true,
	"things": true, "stuff": true, "something": true, "everything": true,
	"whatever": true,
}

// technologies recognized as concrete technical context.
var knownTechnologies = []string{
	"react", "vue", "angular", "svelte", "next", "node", "express",
	"django", "flask", "rails", "spring", "postgres", "postgresql",
	"mysql", "sqlite", "mongodb", "redis", "docker", "kubernetes",
	"typescript", "javascript", "python", "golang", "rust", "java",
	"graphql", "rest", "grpc", "jwt", "oauth", "api", "sql", "css",
	"html", "webpack", "vite", "terraform", "aws", "gcp", "azure",
}

var (
	filePathRe   = regexp.MustCompile(`[\w.-]+/[\w./-]+|\b[\w-]+\.(go|ts|tsx|js|jsx|py|rs|java|rb|css|html|json|yaml|yml|sql|md|sh)\b`)
	lineNumberRe = regexp.MustCompile(`(?i)\bline\s+\d+\b|:\d+\b`)
	errorTextRe  = regexp.MustCompile(`\b\w*(Error|Exception)\b|(?i)\b(panic|stack trace|traceback|errno|segfault)\b`)
	listItemRe   = regexp.MustCompile(`(?m)^\s*(\d+[.)]|[-*•])\s+\S`)
	codeSpanRe   = regexp.MustCompile("`[^`]+`")
	wordRe       = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_]*`)
)

// Classifier is the rule-based vagueness scorer. It is stateless and
// safe for concurrent use.
type Classifier struct{}

// NewClassifier creates a rule-based classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Analyze scores a prompt for vagueness. Empty or whitespace-only input
// is maximally vague by definition.
func (c *Classifier) Analyze(prompt string) model.AnalysisResult {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return model.AnalysisResult{
			Score:      100,
			Source:     model.SourceRules,
			Confidence: 1.0,
			Issues: []model.VaguenessIssue{{
				Type:        model.IssueMissingContext,
				Severity:    model.SeverityHigh,
				Description: "Prompt is empty",
			}},
			HasMissingContext: true,
		}
	}

	result := model.AnalysisResult{
		Source:     model.SourceRules,
		Confidence: 0.8,
	}

	words := wordRe.FindAllString(strings.ToLower(trimmed), -1)
	penalty := 0

	if verb := firstVagueVerb(words); verb != "" {
		penalty += penaltyVagueVerb
		result.HasVagueVerb = true
		result.Issues = append(result.Issues, model.VaguenessIssue{
			Type:        model.IssueVagueVerb,
			Severity:    model.SeverityHigh,
			Description: "Vague verb \"" + verb + "\" does not say what should actually happen",
		})
	}

	if ref := firstVagueReferent(words); ref != "" {
		penalty += penaltyVagueReferent
		result.Issues = append(result.Issues, model.VaguenessIssue{
			Type:        model.IssueVagueReferent,
			Severity:    model.SeverityMedium,
			Description: "Unclear referent \"" + ref + "\" does not identify a concrete target",
		})
	}

	if !hasTechnicalContext(trimmed, words) {
		penalty += penaltyMissingContext
		result.HasMissingContext = true
		result.Issues = append(result.Issues, model.VaguenessIssue{
			Type:        model.IssueMissingContext,
			Severity:    model.SeverityHigh,
			Description: "No file path, technology, or error text to anchor the request",
		})
	}

	if hasUnclearScope(trimmed, words) {
		penalty += penaltyUnclearScope
		result.HasUnclearScope = true
		result.Issues = append(result.Issues, model.VaguenessIssue{
			Type:        model.IssueUnclearScope,
			Severity:    model.SeverityMedium,
			Description: "No enumerated requirements or concrete target to bound the work",
		})
	}

	score := penalty - c.SpecificityScore(trimmed)
	result.Score = clampScore(score)
	return result
}

// SpecificityScore rewards concrete technical detail: file paths, line
// numbers, named technologies, error identifiers, structured lists, and
// inline code. It is the counter-signal subtracted from the vagueness
// penalty, and is reused by the quality analyzer.
func (c *Classifier) SpecificityScore(text string) int {
	score := 0
	lower := strings.ToLower(text)

	if filePathRe.MatchString(text) {
		score += 12
	}
	if lineNumberRe.MatchString(text) {
		score += 12
	}
	if errorTextRe.MatchString(text) {
		score += 12
	}
	if listItemRe.MatchString(text) {
		score += 10
	}
	if codeSpanRe.MatchString(text) {
		score += 8
	}

	techHits := 0
	words := wordRe.FindAllString(lower, -1)
	seen := make(map[string]bool)
	for _, w := range words {
		seen[w] = true
	}
	for _, tech := range knownTechnologies {
		if seen[tech] {
			techHits++
		}
	}
	if techHits > 3 {
		techHits = 3
	}
	score += techHits * 8

	if score > 60 {
		score = 60
	}
	return score
}

func firstVagueVerb(words []string) string {
	// Only the leading words of a prompt carry the imperative; a vague
	// verb buried mid-sentence is usually not the instruction itself.
	limit := len(words)
	if limit > 3 {
		limit = 3
	}
	for _, w := range words[:limit] {
		if vagueVerbs[w] {
			return w
		}
	}
	return ""
}

func firstVagueReferent(words []string) string {
	for _, w := range words {
		if vagueReferents[w] {
			return w
		}
	}
	return ""
}

func hasTechnicalContext(text string, words []string) bool {
	if filePathRe.MatchString(text) || errorTextRe.MatchString(text) {
		return true
	}
	for _, w := range words {
		for _, tech := range knownTechnologies {
			if w == tech {
				return true
			}
		}
	}
	return false
}

func hasUnclearScope(text string, words []string) bool {
	if listItemRe.MatchString(text) {
		return false
	}
	// A short prompt with no enumerated requirements and no concrete
	// target leaves the scope open-ended.
	if len(words) >= 8 {
		return false
	}
	return !filePathRe.MatchString(text)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
