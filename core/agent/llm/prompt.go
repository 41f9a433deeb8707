package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// minContentLength is the short-circuit threshold: below it the model
	// is never called and the fallback pair is returned directly.
	minContentLength = 20

	// maxBodyChars bounds the cleaned body included in the content blob.
	maxBodyChars = 1200

	minSubjectChars     = 3
	minRawBodyChars     = 50
	minCleanBodyChars   = 30
	shortBodyForSnippet = 100
)

// AssembleContent combines subject, body and snippet into the labeled blob
// both prompts are built from. Body is preferred; the snippet fills in when
// the body is missing or short and is not already duplicated.
func AssembleContent(subject, snippet, body string) string {
	var parts []string

	if len(strings.TrimSpace(subject)) > minSubjectChars {
		if cleaned := CleanText(subject); cleaned != "" {
			parts = append(parts, "Subject: "+cleaned)
		}
	}

	if len(strings.TrimSpace(body)) > minRawBodyChars {
		cleaned := CleanText(body)
		if len(strings.TrimSpace(cleaned)) > minCleanBodyChars {
			parts = append(parts, "Content: "+truncate(cleaned, maxBodyChars))
		}
	}

	if snippet != "" && (body == "" || len(strings.TrimSpace(body)) < shortBodyForSnippet) {
		cleaned := CleanText(snippet)
		if cleaned != "" && !strings.Contains(strings.Join(parts, "\n"), cleaned) {
			parts = append(parts, "Preview: "+cleaned)
		}
	}

	return strings.Join(parts, "\n")
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}

const summarySystemPrompt = "You are an expert email summarizer. Rewrite the email content from the " +
	"sender's first-person perspective as a concise summary. Write as if you are the sender speaking " +
	"directly to the recipient. Do not use third-person phrases like 'The email' or 'The sender'. " +
	"Start directly with the content."

const actionSystemPrompt = "You are an expert at identifying action items from emails. Extract any " +
	"specific actions, requests, or tasks that require the recipient to do something. If no action is " +
	"needed, respond with 'No action required.' Keep it to 1-2 sentences maximum."

// buildSummaryPrompt builds the first-person rewrite prompt, with worked
// examples steering the model away from third-person phrasing.
func buildSummaryPrompt(content string, isImportant bool) string {
	importanceNote := ""
	if isImportant {
		importanceNote = " This email is marked as important."
	}

	return fmt.Sprintf(`Rewrite this email content as a concise first-person summary (max 150 words). Write from the sender's perspective, as if they are speaking directly to the recipient.

Examples of first-person style:
- Instead of "The sender is inviting..." -> "I'm inviting you to..."
- Instead of "The email contains..." -> "I wanted to share..."
- Instead of "They are requesting..." -> "I need you to..."

%s

Email content to rewrite:
%s

Provide a first-person summary:
`, importanceNote, content)
}

// buildActionPrompt builds the action-extraction prompt with the category
// checklist and the no-action sentinel instruction.
func buildActionPrompt(content string, isImportant bool) string {
	importanceNote := ""
	if isImportant {
		importanceNote = " This email is marked as important."
	}

	return fmt.Sprintf(`Analyze this email and identify any specific actions, tasks, or requests that require the recipient to do something.

Look for:
- Meeting confirmations or RSVPs needed
- Documents to review or complete
- Decisions to make
- Responses required
- Tasks to complete
- Deadlines to meet
- Questions that need answers
- Forms to fill out
- Appointments to schedule

If there are actions needed, describe them clearly in 1-2 sentences.
If no action is required, respond with "No action required."

%s

Email content to analyze:
%s

Action needed (if any):
`, importanceNote, content)
}
