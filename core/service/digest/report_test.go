package digest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"triage_server/core/domain"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxLen   int
		expected string
	}{
		{
			name:     "short string",
			s:        "ops@example.com",
			maxLen:   40,
			expected: "ops@example.com",
		},
		{
			name:     "truncated",
			s:        "a very long subject line that keeps going and going",
			maxLen:   10,
			expected: "a very lon",
		},
		{
			name:     "never splits a rune",
			s:        "café",
			maxLen:   4, // cut falls inside the two-byte é
			expected: "caf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.s, tt.maxLen)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestPreviewOfTruncatesOnRuneBoundary(t *testing.T) {
	record := &domain.EmailRecord{
		Sender:  strings.Repeat("日", 20), // 60 bytes, boundary falls mid-rune
		Subject: strings.Repeat("報", 20),
		Summary: "I'm sending the weekly report.",
		Action:  domain.NoActionRequired,
	}

	p := previewOf(record)

	if len(p.Sender) > 40 {
		t.Errorf("expected sender capped at 40 bytes, got %d", len(p.Sender))
	}
	if !utf8.ValidString(p.Sender) {
		t.Errorf("expected valid UTF-8 sender, got %q", p.Sender)
	}
	if len(p.Subject) > 50 {
		t.Errorf("expected subject capped at 50 bytes, got %d", len(p.Subject))
	}
	if !utf8.ValidString(p.Subject) {
		t.Errorf("expected valid UTF-8 subject, got %q", p.Subject)
	}
	if p.Action != "" {
		t.Errorf("expected no action in preview for the sentinel, got %q", p.Action)
	}
}
