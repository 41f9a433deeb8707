package llm

import (
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty input",
			text:     "",
			expected: "",
		},
		{
			name:     "plain text untouched",
			text:     "Budget review moved to 3pm",
			expected: "Budget review moved to 3pm",
		},
		{
			name:     "html tags stripped",
			text:     "Hello <b>world</b>",
			expected: "Hello world",
		},
		{
			name:     "signature block removed",
			text:     "Meet at noon\n--\nJohn Doe\nVP of Sales",
			expected: "Meet at noon",
		},
		{
			name:     "closing salutation removed",
			text:     "Please review the attached doc. Thanks, Ann",
			expected: "Please review the attached doc.",
		},
		{
			name:     "quoted reply removed",
			text:     "Works for me. On Mon, Jan 2, 2026, John wrote: can we move it?",
			expected: "Works for me.",
		},
		{
			name:     "quote marker lines removed",
			text:     "line one\n> quoted text\n> more quoted\nline two",
			expected: "line one line two",
		},
		{
			name:     "footer boilerplate removed",
			text:     "New offers this week! Unsubscribe at any time",
			expected: "New offers this week!",
		},
		{
			name:     "whitespace collapsed",
			text:     "too   many\n\n  spaces",
			expected: "too many spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.text)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestCleanSnippet(t *testing.T) {
	tests := []struct {
		name     string
		snippet  string
		expected string
	}{
		{
			name:     "empty input",
			snippet:  "",
			expected: "",
		},
		{
			name:     "sender prefix stripped",
			snippet:  "John Doe: Hey, are we still on for lunch tomorrow",
			expected: "Hey, are we still on for lunch tomorrow",
		},
		{
			name:     "no prefix untouched",
			snippet:  "Your package has shipped",
			expected: "Your package has shipped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanSnippet(tt.snippet)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
