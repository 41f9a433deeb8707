package domain

import (
	"testing"
)

func TestDocID(t *testing.T) {
	r := &EmailRecord{UserID: "user-1", MessageID: "18c2f4a"}
	if got := r.DocID(); got != "user-1_18c2f4a" {
		t.Errorf("expected composite doc id, got %q", got)
	}
}

func TestPending(t *testing.T) {
	tests := []struct {
		name     string
		record   EmailRecord
		expected bool
	}{
		{"fresh record", EmailRecord{}, true},
		{"read", EmailRecord{IsRead: true}, false},
		{"discarded", EmailRecord{Discard: true}, false},
		{"read and discarded", EmailRecord{IsRead: true, Discard: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Pending(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNeedsAction(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		expected bool
	}{
		{"real action", "Reply to confirm attendance.", true},
		{"sentinel", NoActionRequired, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EmailRecord{Action: tt.action}
			if got := r.NeedsAction(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	labels := []string{"INBOX", "UNREAD", "IMPORTANT"}
	encoded := EncodeLabels(labels)
	decoded := DecodeLabels(encoded)

	if len(decoded) != len(labels) {
		t.Fatalf("expected %d labels, got %d", len(labels), len(decoded))
	}
	for i, l := range labels {
		if decoded[i] != l {
			t.Errorf("expected label %q at %d, got %q", l, i, decoded[i])
		}
	}

	if EncodeLabels(nil) != "[]" {
		t.Errorf("expected empty array for nil labels, got %q", EncodeLabels(nil))
	}
	if DecodeLabels("") != nil {
		t.Error("expected nil for empty encoding")
	}
	if DecodeLabels("not json") != nil {
		t.Error("expected nil for malformed encoding")
	}
}
