package model

// ErrorCategory classifies a terminal workflow failure.
type ErrorCategory string

// Error category constants.
const (
	CategoryQuotaExceeded    ErrorCategory = "QUOTA_EXCEEDED"
	CategoryAuthFailed       ErrorCategory = "AUTH_FAILED"
	CategoryNetworkError     ErrorCategory = "NETWORK_ERROR"
	CategoryTimeout          ErrorCategory = "TIMEOUT"
	CategoryModelUnavailable ErrorCategory = "MODEL_UNAVAILABLE"
	CategoryPermissionDenied ErrorCategory = "PERMISSION_DENIED"
	CategoryCancelled        ErrorCategory = "CANCELLED"
	CategoryUnknown          ErrorCategory = "UNKNOWN"
)

// Recoverable reports whether the caller can reasonably retry or
// reconfigure after this category of failure. A host-initiated
// cancellation is final, unlike a provider timeout.
func (c ErrorCategory) Recoverable() bool {
	return c != CategoryUnknown && c != CategoryCancelled
}

// WorkflowOutcome names the terminal state of one orchestration call.
type WorkflowOutcome string

// Workflow outcome constants.
const (
	OutcomeSkipped WorkflowOutcome = "skipped"
	OutcomeSuccess WorkflowOutcome = "success"
	OutcomeFailed  WorkflowOutcome = "failed"
)

// WorkflowResult is the discriminated outcome of ProcessPrompt.
// Exactly one of the three shapes is populated: Skipped carries only
// the analysis, Success carries a rewrite, Failed carries a category
// and message.
type WorkflowResult struct {
	Outcome  WorkflowOutcome
	Analysis AnalysisResult
	Rewrite  *RewriteResult
	Cached   bool
	Category ErrorCategory
	Message  string
}

// Skipped reports whether the prompt scored below the enhancement
// threshold and no provider was consulted.
func (r WorkflowResult) Skipped() bool { return r.Outcome == OutcomeSkipped }

// Succeeded reports whether an enhanced prompt is available.
func (r WorkflowResult) Succeeded() bool { return r.Outcome == OutcomeSuccess }

// Failed reports whether the call ended in a classified error.
func (r WorkflowResult) Failed() bool { return r.Outcome == OutcomeFailed }
