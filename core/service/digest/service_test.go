package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
)

type fakeProvider struct {
	ids      []string
	listErr  error
	messages map[string]*out.ProviderMessage
}

func (p *fakeProvider) Email() string { return "me@example.com" }

func (p *fakeProvider) ListUnreadSince(context.Context, time.Time) ([]string, error) {
	return p.ids, p.listErr
}

func (p *fakeProvider) GetMessage(_ context.Context, id string) (*out.ProviderMessage, error) {
	msg, ok := p.messages[id]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return msg, nil
}

func (p *fakeProvider) GetLabels(context.Context, string) ([]string, error) {
	return nil, out.ErrMessageNotFound
}

type fakeSummarizer struct {
	calls int
}

func (s *fakeSummarizer) SummarizeEmail(_ context.Context, input out.SummarizeInput) out.SummarizeResult {
	s.calls++
	action := domain.NoActionRequired
	if strings.Contains(input.Subject, "RSVP") {
		action = "Reply to confirm attendance."
	}
	return out.SummarizeResult{
		Summary: "I'm writing about: " + input.Subject,
		Action:  action,
		Source:  out.SourceModel,
	}
}

type fakeRepo struct {
	saved     []*domain.EmailRecord
	upsertErr error
}

func (r *fakeRepo) UpsertBatch(_ context.Context, records []*domain.EmailRecord) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.saved = append(r.saved, records...)
	return len(records), nil
}

func (r *fakeRepo) FindRecent(context.Context, string, time.Duration) ([]*domain.EmailRecord, error) {
	return nil, nil
}
func (r *fakeRepo) FindFlagged(context.Context, string) ([]*domain.EmailRecord, error) {
	return nil, nil
}
func (r *fakeRepo) FindDiscarded(context.Context, string) ([]*domain.EmailRecord, error) {
	return nil, nil
}
func (r *fakeRepo) MarkRead(context.Context, string) error    { return nil }
func (r *fakeRepo) MarkDiscard(context.Context, string) error { return nil }
func (r *fakeRepo) ToggleFlag(context.Context, string) (bool, error) {
	return false, nil
}
func (r *fakeRepo) ListByUser(context.Context, string) ([]*domain.EmailRecord, error) {
	return nil, nil
}
func (r *fakeRepo) DeleteBatch(context.Context, []string) (int64, error) { return 0, nil }

type fakeReconciler struct {
	deleted int
	err     error
}

func (f *fakeReconciler) Reconcile(context.Context, string) (int, error) {
	return f.deleted, f.err
}

func message(id, subject string, important bool) *out.ProviderMessage {
	return &out.ProviderMessage{
		ID:          id,
		ThreadID:    "t-" + id,
		Sender:      "sender@example.com",
		Subject:     subject,
		Snippet:     "snippet for " + subject,
		Body:        "body for " + subject,
		Labels:      []string{"INBOX", "UNREAD"},
		ReceivedAt:  time.Now().Add(-time.Hour),
		IsImportant: important,
	}
}

func TestRunFullPipeline(t *testing.T) {
	provider := &fakeProvider{
		ids: []string{"m1", "m2", "m3"},
		messages: map[string]*out.ProviderMessage{
			"m1": message("m1", "Quarterly report", false),
			"m2": message("m2", "RSVP for the offsite", true),
			"m3": message("m3", "Newsletter", false),
		},
	}
	summarizer := &fakeSummarizer{}
	repo := &fakeRepo{}
	svc := NewService(provider, summarizer, repo, &fakeReconciler{deleted: 2})

	report := svc.Run(context.Background(), "user-1", 24*time.Hour)

	if report.Reconciled != 2 {
		t.Errorf("expected 2 reconciled, got %d", report.Reconciled)
	}
	if report.Fetched != 3 {
		t.Errorf("expected 3 fetched, got %d", report.Fetched)
	}
	if report.Saved != 3 {
		t.Errorf("expected 3 saved, got %d", report.Saved)
	}
	if summarizer.calls != 3 {
		t.Errorf("expected 3 summarizer calls, got %d", summarizer.calls)
	}
	if report.ImportantCount != 1 {
		t.Errorf("expected 1 important, got %d", report.ImportantCount)
	}
	if report.ActionCount != 1 {
		t.Errorf("expected 1 action, got %d", report.ActionCount)
	}
	if len(report.Previews) != 3 {
		t.Errorf("expected 3 previews, got %d", len(report.Previews))
	}

	for _, record := range repo.saved {
		if record.UserID != "user-1" {
			t.Errorf("expected user-1 record, got %q", record.UserID)
		}
		if record.Summary == "" || record.Action == "" {
			t.Errorf("expected summary and action set on %s", record.MessageID)
		}
	}
}

func TestRunSkipsFailedFetches(t *testing.T) {
	provider := &fakeProvider{
		ids: []string{"m1", "broken", "m2"},
		messages: map[string]*out.ProviderMessage{
			"m1": message("m1", "Quarterly report", false),
			"m2": message("m2", "Follow up", false),
		},
	}
	repo := &fakeRepo{}
	svc := NewService(provider, &fakeSummarizer{}, repo, &fakeReconciler{})

	report := svc.Run(context.Background(), "user-1", 24*time.Hour)

	if report.Fetched != 2 {
		t.Errorf("expected broken message skipped, got %d fetched", report.Fetched)
	}
	if report.Saved != 2 {
		t.Errorf("expected 2 saved, got %d", report.Saved)
	}
}

func TestRunListFailureReturnsPartialReport(t *testing.T) {
	provider := &fakeProvider{listErr: errors.New("quota exceeded")}
	svc := NewService(provider, &fakeSummarizer{}, &fakeRepo{}, &fakeReconciler{deleted: 1})

	report := svc.Run(context.Background(), "user-1", 24*time.Hour)

	if report.Reconciled != 1 {
		t.Errorf("expected reconcile count preserved, got %d", report.Reconciled)
	}
	if report.Fetched != 0 || report.Saved != 0 {
		t.Errorf("expected empty pipeline counts, got fetched=%d saved=%d", report.Fetched, report.Saved)
	}
}

func TestRunReconcileFailureIsNotFatal(t *testing.T) {
	provider := &fakeProvider{
		ids: []string{"m1"},
		messages: map[string]*out.ProviderMessage{
			"m1": message("m1", "Quarterly report", false),
		},
	}
	svc := NewService(provider, &fakeSummarizer{}, &fakeRepo{}, &fakeReconciler{err: errors.New("provider down")})

	report := svc.Run(context.Background(), "user-1", 24*time.Hour)

	if report.Saved != 1 {
		t.Errorf("expected pipeline to continue past reconcile failure, got %d saved", report.Saved)
	}
}

func TestRunUpsertFailureReportsZeroSaved(t *testing.T) {
	provider := &fakeProvider{
		ids: []string{"m1"},
		messages: map[string]*out.ProviderMessage{
			"m1": message("m1", "Quarterly report", false),
		},
	}
	svc := NewService(provider, &fakeSummarizer{}, &fakeRepo{upsertErr: errors.New("write failed")}, &fakeReconciler{})

	report := svc.Run(context.Background(), "user-1", 24*time.Hour)

	if report.Fetched != 1 {
		t.Errorf("expected 1 fetched, got %d", report.Fetched)
	}
	if report.Saved != 0 {
		t.Errorf("expected 0 saved on write failure, got %d", report.Saved)
	}
}

func TestReportRender(t *testing.T) {
	report := &Report{
		UserID:         "user-1",
		Account:        "me@example.com",
		Lookback:       24 * time.Hour,
		Reconciled:     1,
		Fetched:        2,
		Saved:          2,
		ImportantCount: 1,
		ActionCount:    1,
		Previews: []Preview{
			{Sender: "a@example.com", Subject: "RSVP", Summary: "I'm inviting you.", Action: "Reply.", IsImportant: true},
			{Sender: "b@example.com", Subject: "News", Summary: "I'm sharing news.", Action: domain.NoActionRequired},
		},
	}

	text := report.Render()
	for _, want := range []string{"me@example.com", "RSVP", "[!]", "Reply."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected rendered report to contain %q", want)
		}
	}
}
