package llm

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"
)

const (
	minSummaryLength = 15

	minRawSnippetForFallback   = 15
	minCleanSnippetForFallback = 10
	minSubjectForFallback      = 5

	// FallbackSummary is returned when neither snippet nor subject yields
	// usable text.
	FallbackSummary = "Email content preview not available."
)

var refusalPhrases = []string{"i cannot", "sorry", "unable to"}

// completionClient is the slice of Client the summarizer needs; tests stub it.
type completionClient interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// SummarizerConfig holds per-call limits for the two completions.
type SummarizerConfig struct {
	Timeout          time.Duration
	SummaryMaxTokens int
	ActionMaxTokens  int
}

// Summarizer produces the (summary, action) pair for an email. It
// implements out.Summarizer: every failure path degrades to the
// deterministic fallback pair, tagged with why.
type Summarizer struct {
	client           completionClient
	timeout          time.Duration
	summaryMaxTokens int
	actionMaxTokens  int
}

// NewSummarizer creates a summarizer over a completion client.
func NewSummarizer(client completionClient, cfg SummarizerConfig) *Summarizer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	summaryMax := cfg.SummaryMaxTokens
	if summaryMax == 0 {
		summaryMax = 100
	}
	actionMax := cfg.ActionMaxTokens
	if actionMax == 0 {
		actionMax = 60
	}
	return &Summarizer{
		client:           client,
		timeout:          timeout,
		summaryMaxTokens: summaryMax,
		actionMaxTokens:  actionMax,
	}
}

// SummarizeEmail assembles the content blob, issues the two model calls and
// post-processes the responses. Near-empty content skips the model
// entirely; any call failure degrades the whole pair without retrying.
func (s *Summarizer) SummarizeEmail(ctx context.Context, input out.SummarizeInput) out.SummarizeResult {
	content := AssembleContent(input.Subject, input.Snippet, input.Body)

	if len(strings.TrimSpace(content)) < minContentLength {
		return out.SummarizeResult{
			Summary: FallbackSummaryFor(input.Subject, input.Snippet),
			Action:  domain.NoActionRequired,
			Source:  out.SourceShortContent,
		}
	}

	rawSummary, err := s.complete(ctx, summarySystemPrompt, buildSummaryPrompt(content, input.IsImportant), s.summaryMaxTokens)
	if err != nil {
		logger.WithError(err).Warn("summary completion failed, using fallback")
		return s.errorFallback(input)
	}

	rawAction, err := s.complete(ctx, actionSystemPrompt, buildActionPrompt(content, input.IsImportant), s.actionMaxTokens)
	if err != nil {
		logger.WithError(err).Warn("action completion failed, using fallback")
		return s.errorFallback(input)
	}

	summary := cleanSummaryText(rawSummary)
	action := cleanActionText(rawAction)

	if rejectSummary(summary) {
		return out.SummarizeResult{
			Summary: FallbackSummaryFor(input.Subject, input.Snippet),
			Action:  action,
			Source:  out.SourceLowQuality,
		}
	}

	return out.SummarizeResult{
		Summary: summary,
		Action:  action,
		Source:  out.SourceModel,
	}
}

func (s *Summarizer) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.CompleteWithSystem(callCtx, systemPrompt, userPrompt, maxTokens)
}

func (s *Summarizer) errorFallback(input out.SummarizeInput) out.SummarizeResult {
	return out.SummarizeResult{
		Summary: FallbackSummaryFor(input.Subject, input.Snippet),
		Action:  domain.NoActionRequired,
		Source:  out.SourceModelError,
	}
}

func rejectSummary(summary string) bool {
	if summary == "" || len(summary) < minSummaryLength {
		return true
	}
	lower := strings.ToLower(summary)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FallbackSummaryFor builds the deterministic summary used whenever the
// model output is skipped or rejected: cleaned snippet, else subject
// prefixed with "Regarding: ", else a fixed placeholder.
func FallbackSummaryFor(subject, snippet string) string {
	if len(strings.TrimSpace(snippet)) > minRawSnippetForFallback {
		cleaned := CleanText(CleanSnippet(snippet))
		if len(cleaned) > minCleanSnippetForFallback {
			return cleanSummaryText(cleaned)
		}
	}

	if len(strings.TrimSpace(subject)) > minSubjectForFallback {
		if cleaned := CleanText(subject); cleaned != "" {
			return "Regarding: " + cleanSummaryText(cleaned)
		}
	}

	return FallbackSummary
}

var (
	summaryLabelRe = regexp.MustCompile(`(?i)^(summary|tldr):\s*`)
	thirdPersonRe  = regexp.MustCompile(`(?i)^(the email|this email|the sender|they are).*?:`)
	actionLabelRe  = regexp.MustCompile(`(?i)^(action needed|actions?):\s*`)
	newlineRunRe   = regexp.MustCompile(`\n+`)
)

// cleanSummaryText normalizes a raw model summary: strips quoting and
// echoed labels, drops third-person lead-ins, flattens to one paragraph,
// and enforces capitalization and terminal punctuation.
func cleanSummaryText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.Trim(text, `"'`)
	text = summaryLabelRe.ReplaceAllString(text, "")
	text = thirdPersonRe.ReplaceAllString(text, "")
	text = newlineRunRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	text = capitalize(text)
	return ensurePunctuated(text)
}

// cleanActionText normalizes a raw model action, substituting the sentinel
// for empty output and leaving the sentinel itself untouched.
func cleanActionText(text string) string {
	if strings.TrimSpace(text) == "" {
		return domain.NoActionRequired
	}

	text = strings.Trim(text, `"'`)
	text = actionLabelRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.NoActionRequired
	}

	if !strings.EqualFold(text, domain.NoActionRequired) {
		text = capitalize(text)
		text = ensurePunctuated(text)
	}
	return text
}

func capitalize(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func ensurePunctuated(text string) string {
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}

var _ out.Summarizer = (*Summarizer)(nil)
