// Package model defines the core domain models used throughout the application.
package model

// AnalysisSource indicates which scoring path produced an analysis.
type AnalysisSource string

// Analysis source constants.
const (
	SourceRules  AnalysisSource = "rules"
	SourceML     AnalysisSource = "ml"
	SourceHybrid AnalysisSource = "hybrid"
)

// IssueType categorizes a detected vagueness problem.
type IssueType string

// Issue type constants.
const (
	IssueVagueVerb      IssueType = "VAGUE_VERB"
	IssueVagueReferent  IssueType = "VAGUE_REFERENT"
	IssueMissingContext IssueType = "MISSING_CONTEXT"
	IssueUnclearScope   IssueType = "UNCLEAR_SCOPE"
)

// IssueSeverity grades how much an issue contributes to vagueness.
type IssueSeverity string

// Issue severity constants.
const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// VaguenessIssue describes one detected problem with a prompt.
type VaguenessIssue struct {
	Type        IssueType
	Severity    IssueSeverity
	Description string
}

// AnalysisResult is the outcome of scoring a prompt for vagueness.
// Higher scores mean more vague. Results are produced fresh per call
// and never mutated after creation.
type AnalysisResult struct {
	Source            AnalysisSource
	Issues            []VaguenessIssue
	Score             int
	Confidence        float64
	HasVagueVerb      bool
	HasMissingContext bool
	HasUnclearScope   bool
}

// IsVague reports whether the score crosses the given threshold.
func (r AnalysisResult) IsVague(threshold int) bool {
	return r.Score >= threshold
}
