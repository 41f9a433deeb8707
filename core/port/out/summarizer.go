package out

import "context"

// SummarizeInput carries the email fields the summarizer works from.
type SummarizeInput struct {
	Subject     string
	Snippet     string
	Body        string
	IsImportant bool
}

// SummarySource tags how a summarize result was produced, so callers can
// tell "fallback because content too short" from "fallback because the
// model call failed".
type SummarySource string

const (
	SourceModel        SummarySource = "model"
	SourceShortContent SummarySource = "short_content"
	SourceModelError   SummarySource = "model_error"
	SourceLowQuality   SummarySource = "low_quality"
)

// Fallback reports whether the result bypassed or rejected the model output.
func (s SummarySource) Fallback() bool {
	return s != SourceModel
}

// SummarizeResult is always usable: the pair degrades to deterministic
// fallbacks instead of failing.
type SummarizeResult struct {
	Summary string
	Action  string
	Source  SummarySource
}

// Summarizer produces the first-person summary and action extraction for a
// single email. Implementations never return an error.
type Summarizer interface {
	SummarizeEmail(ctx context.Context, input SummarizeInput) SummarizeResult
}
