// Package domain holds the core entities of the triage service.
package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// Triage action tags stamped on records by the swipe mutations.
const (
	ActionTypeRead    = "swipe_right_read"
	ActionTypeDiscard = "swipe_left_discard"
)

// NoActionRequired is the sentinel the action extraction settles on when an
// email asks nothing of the recipient.
const NoActionRequired = "No action required."

// EmailRecord is the persisted unit of the triage store. One record per
// (user, provider message); identity is the composite DocID.
type EmailRecord struct {
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`

	// Provider data, immutable after ingestion.
	ThreadID    string    `json:"thread_id"`
	Sender      string    `json:"sender"`
	Subject     string    `json:"subject"`
	Snippet     string    `json:"snippet"`
	Body        string    `json:"body,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
	IsImportant bool      `json:"is_important"`
	Labels      string    `json:"labels"` // JSON-serialized label IDs
	CreatedAt   time.Time `json:"created_at"`

	// Derived once at ingestion, never recomputed.
	Summary string `json:"summary"`
	Action  string `json:"action"`

	// Triage state, owned by the store adapter's mutations.
	IsRead      bool       `json:"is_read"`
	Flag        bool       `json:"flag"`
	Discard     bool       `json:"discard"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ActionType  string     `json:"action_type,omitempty"`
	FlaggedAt   *time.Time `json:"flagged_at,omitempty"`
}

// DocID returns the composite document identity. Upserts keyed on it make
// re-ingestion of the same message idempotent.
func (r *EmailRecord) DocID() string {
	return r.UserID + "_" + r.MessageID
}

// Pending reports whether the record is still waiting for a swipe: visible
// to the recent/unread query only while unread and not discarded.
func (r *EmailRecord) Pending() bool {
	return !r.IsRead && !r.Discard
}

// NeedsAction reports whether the extracted action asks something of the
// recipient.
func (r *EmailRecord) NeedsAction() bool {
	return r.Action != "" && r.Action != NoActionRequired
}

// EncodeLabels serializes provider label IDs for storage.
func EncodeLabels(labels []string) string {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeLabels deserializes the stored label set.
func DecodeLabels(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(encoded), &labels); err != nil {
		return nil
	}
	return labels
}
