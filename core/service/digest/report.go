package digest

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"triage_server/core/domain"
)

const maxPreviews = 3

// Preview is a truncated glimpse of one processed email for the report.
type Preview struct {
	Sender      string `json:"sender"`
	Subject     string `json:"subject"`
	Summary     string `json:"summary"`
	Action      string `json:"action,omitempty"`
	IsImportant bool   `json:"is_important"`
}

// Report is the outcome of one digest run.
type Report struct {
	UserID         string        `json:"user_id"`
	Account        string        `json:"account"`
	Lookback       time.Duration `json:"-"`
	Reconciled     int           `json:"reconciled"`
	Fetched        int           `json:"fetched"`
	Saved          int           `json:"saved"`
	ImportantCount int           `json:"important_count"`
	ActionCount    int           `json:"action_count"`
	Previews       []Preview     `json:"previews,omitempty"`
}

func previewOf(record *domain.EmailRecord) Preview {
	p := Preview{
		Sender:      truncate(record.Sender, 40),
		Subject:     truncate(record.Subject, 50),
		Summary:     record.Summary,
		IsImportant: record.IsImportant,
	}
	if record.NeedsAction() {
		p.Action = record.Action
	}
	return p
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

// Render formats the human-readable morning report printed after a digest
// run.
func (r *Report) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString("\n" + rule + "\n")
	b.WriteString("YOUR MORNING EMAIL SUMMARY\n")
	b.WriteString(rule + "\n")

	if r.Reconciled > 0 {
		fmt.Fprintf(&b, "Removed %d emails already handled in %s\n", r.Reconciled, r.Account)
	}

	if r.Fetched == 0 {
		b.WriteString("No new emails. You're all caught up!\n")
		b.WriteString(rule + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "In the last %d hours, you missed %d emails\n", int(r.Lookback.Hours()), r.Fetched)
	if r.ImportantCount > 0 {
		fmt.Fprintf(&b, "%d of them are marked as important\n", r.ImportantCount)
	}
	if r.ActionCount > 0 {
		fmt.Fprintf(&b, "%d emails require action from you\n", r.ActionCount)
	}
	fmt.Fprintf(&b, "Saved %d emails with summaries and actions\n", r.Saved)

	b.WriteString("\nPreview of your emails:\n")
	for i, p := range r.Previews {
		marker := ""
		if p.IsImportant {
			marker = "[!] "
		}
		fmt.Fprintf(&b, "\n%d. %sFrom: %s\n", i+1, marker, p.Sender)
		fmt.Fprintf(&b, "   Subject: %s\n", p.Subject)
		fmt.Fprintf(&b, "   Summary: %s\n", p.Summary)
		if p.Action != "" {
			fmt.Fprintf(&b, "   Action: %s\n", p.Action)
		}
	}
	if remaining := r.Fetched - len(r.Previews); remaining > 0 {
		fmt.Fprintf(&b, "\n   ... and %d more emails with summaries and actions\n", remaining)
	}

	b.WriteString(rule + "\n")
	return b.String()
}
