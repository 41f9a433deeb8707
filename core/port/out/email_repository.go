package out

import (
	"context"
	"errors"
	"time"

	"triage_server/core/domain"
)

// ErrRecordNotFound is returned by per-document operations when no stored
// record matches the given doc ID.
var ErrRecordNotFound = errors.New("email record not found")

// EmailRepository is the outbound port for the triage document store.
type EmailRepository interface {
	// UpsertBatch writes records keyed by DocID with merge semantics:
	// provider data and the summary/action pair are set, triage fields
	// already present are preserved. Returns the number written.
	UpsertBatch(ctx context.Context, records []*domain.EmailRecord) (int, error)

	// FindRecent returns pending records (unread, not discarded) received
	// within the window, newest first.
	FindRecent(ctx context.Context, userID string, window time.Duration) ([]*domain.EmailRecord, error)

	// FindFlagged returns flagged, non-discarded records, newest first.
	FindFlagged(ctx context.Context, userID string) ([]*domain.EmailRecord, error)

	// FindDiscarded returns discarded records, newest first.
	FindDiscarded(ctx context.Context, userID string) ([]*domain.EmailRecord, error)

	// MarkRead sets the read flag and stamps processed_at / action_type.
	MarkRead(ctx context.Context, docID string) error

	// MarkDiscard sets the discard flag and stamps processed_at / action_type.
	MarkDiscard(ctx context.Context, docID string) error

	// ToggleFlag negates the flag and returns the new state. flagged_at is
	// stamped on the transition to true and cleared otherwise.
	ToggleFlag(ctx context.Context, docID string) (bool, error)

	// ListByUser returns every stored record for the user (reconcile sweep).
	ListByUser(ctx context.Context, userID string) ([]*domain.EmailRecord, error)

	// DeleteBatch removes records by doc ID and returns the deleted count.
	DeleteBatch(ctx context.Context, docIDs []string) (int64, error)
}
