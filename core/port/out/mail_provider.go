// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned by MailProvider lookups when the provider
// no longer knows the message. Reconciliation treats it the same as "read".
var ErrMessageNotFound = errors.New("provider message not found")

// ProviderMessage is a fully fetched provider message.
type ProviderMessage struct {
	ID          string
	ThreadID    string
	Sender      string
	Subject     string
	Snippet     string
	Body        string
	Labels      []string
	ReceivedAt  time.Time
	IsImportant bool
	IsRead      bool
}

// MailProvider is the outbound port for the external mail provider.
type MailProvider interface {
	// Email returns the authenticated account's address.
	Email() string

	// ListUnreadSince returns IDs of unread messages received after the
	// given time, paginating until the provider is exhausted.
	ListUnreadSince(ctx context.Context, since time.Time) ([]string, error)

	// GetMessage fetches the full message payload.
	GetMessage(ctx context.Context, messageID string) (*ProviderMessage, error)

	// GetLabels fetches only the current label set for a message. Returns
	// ErrMessageNotFound when the provider reports the message gone.
	GetLabels(ctx context.Context, messageID string) ([]string, error)
}
