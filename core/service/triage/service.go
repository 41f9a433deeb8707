// Package triage implements the swipe actions, read-back queries and the
// provider reconciliation sweep over stored email records.
package triage

import (
	"context"
	"errors"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"
)

// Service orchestrates triage operations over the repository and, for
// reconciliation, the mail provider.
type Service struct {
	repo     out.EmailRepository
	provider out.MailProvider
}

// NewService creates a triage service. The provider may be nil when only
// store-side operations are served (API mode without a Gmail session).
func NewService(repo out.EmailRepository, provider out.MailProvider) *Service {
	return &Service{repo: repo, provider: provider}
}

// Recent returns pending records received within the window, newest first.
func (s *Service) Recent(ctx context.Context, userID string, window time.Duration) ([]*domain.EmailRecord, error) {
	records, err := s.repo.FindRecent(ctx, userID, window)
	if err != nil {
		return nil, apperr.DatabaseError("find recent emails", err)
	}
	return records, nil
}

// Flagged returns records flagged for later review.
func (s *Service) Flagged(ctx context.Context, userID string) ([]*domain.EmailRecord, error) {
	records, err := s.repo.FindFlagged(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError("find flagged emails", err)
	}
	return records, nil
}

// Discarded returns records the user swiped away.
func (s *Service) Discarded(ctx context.Context, userID string) ([]*domain.EmailRecord, error) {
	records, err := s.repo.FindDiscarded(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError("find discarded emails", err)
	}
	return records, nil
}

// MarkRead records a swipe-right: the user is done with this email.
func (s *Service) MarkRead(ctx context.Context, docID string) error {
	return s.mutate(ctx, docID, s.repo.MarkRead, "mark read")
}

// MarkDiscard records a swipe-left: ads, spam, noise.
func (s *Service) MarkDiscard(ctx context.Context, docID string) error {
	return s.mutate(ctx, docID, s.repo.MarkDiscard, "mark discard")
}

func (s *Service) mutate(ctx context.Context, docID string, op func(context.Context, string) error, name string) error {
	if err := op(ctx, docID); err != nil {
		if errors.Is(err, out.ErrRecordNotFound) {
			return apperr.NotFound("email record")
		}
		return apperr.DatabaseError(name, err)
	}
	return nil
}

// ToggleFlag flips the review flag and returns the new state.
func (s *Service) ToggleFlag(ctx context.Context, docID string) (bool, error) {
	flagged, err := s.repo.ToggleFlag(ctx, docID)
	if err != nil {
		if errors.Is(err, out.ErrRecordNotFound) {
			return false, apperr.NotFound("email record")
		}
		return false, apperr.DatabaseError("toggle flag", err)
	}
	return flagged, nil
}

// Reconcile sweeps the user's stored records against the provider's current
// state and deletes the ones whose message is now read or gone, keeping the
// store limited to truly pending items. Lookups run one record at a time;
// deletions are batched. Returns the deleted count.
func (s *Service) Reconcile(ctx context.Context, userID string) (int, error) {
	if s.provider == nil {
		return 0, apperr.Internal("no mail provider configured")
	}

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, apperr.DatabaseError("list stored emails", err)
	}

	var toDelete []string
	for _, record := range records {
		labels, err := s.provider.GetLabels(ctx, record.MessageID)
		if err != nil {
			if errors.Is(err, out.ErrMessageNotFound) {
				// Deleted provider-side: same outcome as "now read"
				toDelete = append(toDelete, record.DocID())
				continue
			}
			logger.WithUser(userID).WithError(err).Warn("reconcile: skipping message %s", record.MessageID)
			continue
		}
		if !containsLabel(labels, "UNREAD") {
			toDelete = append(toDelete, record.DocID())
		}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteBatch(ctx, toDelete)
	if err != nil {
		return 0, apperr.DatabaseError("delete reconciled emails", err)
	}
	return int(deleted), nil
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
