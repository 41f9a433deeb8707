// Package digest runs the morning pipeline: reconcile, fetch unread,
// summarize, persist, report.
package digest

import (
	"context"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"
)

// Reconciler is the slice of the triage service the pipeline needs.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (int, error)
}

// Service sequences one digest run. Everything is sequential: one message's
// failure is logged and skipped, never fanned out or retried.
type Service struct {
	provider   out.MailProvider
	summarizer out.Summarizer
	repo       out.EmailRepository
	reconciler Reconciler
}

// NewService creates a digest service.
func NewService(provider out.MailProvider, summarizer out.Summarizer, repo out.EmailRepository, reconciler Reconciler) *Service {
	return &Service{
		provider:   provider,
		summarizer: summarizer,
		repo:       repo,
		reconciler: reconciler,
	}
}

// Run executes the pipeline for one user and lookback window. It returns a
// report even on partial failure; only the caller decides what is fatal.
func (s *Service) Run(ctx context.Context, userID string, lookback time.Duration) *Report {
	log := logger.WithUser(userID)
	report := &Report{UserID: userID, Lookback: lookback, Account: s.provider.Email()}

	reconciled, err := s.reconciler.Reconcile(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("reconcile sweep failed, continuing")
	}
	report.Reconciled = reconciled

	since := time.Now().Add(-lookback)
	ids, err := s.provider.ListUnreadSince(ctx, since)
	if err != nil {
		log.WithError(err).Error("failed to list unread messages")
		return report
	}
	if len(ids) == 0 {
		log.Info("no unread emails in the last %s", lookback)
		return report
	}
	log.Info("found %d unread emails in the last %s", len(ids), lookback)

	records := s.fetchAndSummarize(ctx, userID, ids)
	report.Fetched = len(records)

	saved, err := s.repo.UpsertBatch(ctx, records)
	if err != nil {
		log.WithError(err).Error("failed to save email records")
		saved = 0
	}
	report.Saved = saved

	for _, record := range records {
		if record.IsImportant {
			report.ImportantCount++
		}
		if record.NeedsAction() {
			report.ActionCount++
		}
		if len(report.Previews) < maxPreviews {
			report.Previews = append(report.Previews, previewOf(record))
		}
	}

	return report
}

func (s *Service) fetchAndSummarize(ctx context.Context, userID string, ids []string) []*domain.EmailRecord {
	log := logger.WithUser(userID)

	records := make([]*domain.EmailRecord, 0, len(ids))
	for i, id := range ids {
		log.Debug("processing email %d/%d", i+1, len(ids))

		msg, err := s.provider.GetMessage(ctx, id)
		if err != nil {
			log.WithError(err).Warn("failed to fetch message %s, skipping", id)
			continue
		}

		record := recordFrom(userID, msg)

		result := s.summarizer.SummarizeEmail(ctx, out.SummarizeInput{
			Subject:     msg.Subject,
			Snippet:     msg.Snippet,
			Body:        msg.Body,
			IsImportant: msg.IsImportant,
		})
		record.Summary = result.Summary
		record.Action = result.Action
		if result.Source.Fallback() {
			log.Debug("summary for %s used fallback (%s)", id, result.Source)
		}

		records = append(records, record)
	}
	return records
}

func recordFrom(userID string, msg *out.ProviderMessage) *domain.EmailRecord {
	return &domain.EmailRecord{
		UserID:      userID,
		MessageID:   msg.ID,
		ThreadID:    msg.ThreadID,
		Sender:      msg.Sender,
		Subject:     msg.Subject,
		Snippet:     msg.Snippet,
		Body:        msg.Body,
		ReceivedAt:  msg.ReceivedAt,
		IsImportant: msg.IsImportant,
		Labels:      domain.EncodeLabels(msg.Labels),
		IsRead:      msg.IsRead,
		CreatedAt:   time.Now(),
	}
}
