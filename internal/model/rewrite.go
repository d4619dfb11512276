package model

// ImprovementBreakdown summarizes which quality dimensions a rewrite
// measurably improved.
type ImprovementBreakdown struct {
	AddedSpecificity bool
	MadeActionable   bool
	AddressedIssues  bool
	StayedOnTopic    bool
}

// RewriteResult is a completed prompt enhancement.
type RewriteResult struct {
	Original     string
	Enhanced     string
	Model        string
	TokensUsed   int
	Improvements ImprovementBreakdown
}
