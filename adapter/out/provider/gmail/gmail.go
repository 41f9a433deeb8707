// Package gmail provides the Gmail API adapter for the triage pipeline.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"triage_server/core/port/out"
	"triage_server/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Provider implements out.MailProvider for Gmail.
type Provider struct {
	service *gmail.Service
	email   string
	cb      *gobreaker.CircuitBreaker
}

// Config holds the desktop OAuth file locations.
type Config struct {
	CredentialsFile string
	TokenFile       string
}

// NewProvider authenticates against Gmail using the desktop flow
// (credentials.json + cached token.json) and verifies the account. Any
// failure here is fatal for the run.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", cfg.CredentialsFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := loadToken(ctx, oauthConfig, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain oauth token: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &Provider{
		service: service,
		email:   profile.EmailAddress,
		cb:      gobreaker.NewCircuitBreaker(breakerSettings()),
	}, nil
}

func breakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}
}

// Email returns the authenticated account's address.
func (p *Provider) Email() string {
	return p.email
}

// ListUnreadSince lists unread message IDs received after the given time,
// following page tokens until the result set is exhausted.
func (p *Provider) ListUnreadSince(ctx context.Context, since time.Time) ([]string, error) {
	query := unreadQuery(since)

	var ids []string
	pageToken := ""
	for {
		req := p.service.Users.Messages.List("me").Q(query)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		result, err := p.cb.Execute(func() (interface{}, error) {
			return req.Context(ctx).Do()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		resp := result.(*gmail.ListMessagesResponse)
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return ids, nil
		}
	}
}

// GetMessage fetches the full message payload.
func (p *Provider) GetMessage(ctx context.Context, messageID string) (*out.ProviderMessage, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.service.Users.Messages.Get("me", messageID).
			Format("full").
			Context(ctx).
			Do()
	})
	if err != nil {
		if isNotFound(err) {
			return nil, out.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	return parseMessage(result.(*gmail.Message)), nil
}

// GetLabels fetches only the label set, for the reconciliation sweep.
func (p *Provider) GetLabels(ctx context.Context, messageID string) ([]string, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.service.Users.Messages.Get("me", messageID).
			Format("minimal").
			Context(ctx).
			Do()
	})
	if err != nil {
		if isNotFound(err) {
			return nil, out.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get labels for %s: %w", messageID, err)
	}

	return result.(*gmail.Message).LabelIds, nil
}

func isNotFound(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == 404
	}
	return false
}

func unreadQuery(since time.Time) string {
	return fmt.Sprintf("is:unread after:%d", since.Unix())
}

// Helper functions

func parseMessage(msg *gmail.Message) *out.ProviderMessage {
	pm := &out.ProviderMessage{
		ID:          msg.Id,
		ThreadID:    msg.ThreadId,
		Snippet:     msg.Snippet,
		Labels:      msg.LabelIds,
		ReceivedAt:  time.Unix(msg.InternalDate/1000, 0),
		IsImportant: hasLabel(msg.LabelIds, "IMPORTANT"),
		IsRead:      !hasLabel(msg.LabelIds, "UNREAD"),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				pm.Sender = header.Value
			case "Subject":
				pm.Subject = header.Value
			}
		}
		pm.Body = extractBody(msg.Payload, 0)
	}

	return pm
}

// extractBody prefers the first text/plain part and falls back to
// text/html, descending one level into multipart containers.
func extractBody(payload *gmail.MessagePart, depth int) string {
	if payload == nil || depth > 1 {
		return ""
	}

	if len(payload.Parts) == 0 {
		if payload.MimeType == "text/plain" || payload.MimeType == "text/html" {
			return decodePartBody(payload)
		}
		return ""
	}

	html := ""
	for _, part := range payload.Parts {
		switch part.MimeType {
		case "text/plain":
			if text := decodePartBody(part); text != "" {
				return text
			}
		case "text/html":
			if html == "" {
				html = decodePartBody(part)
			}
		default:
			if len(part.Parts) > 0 {
				if text := extractBody(part, depth+1); text != "" {
					return text
				}
			}
		}
	}
	return html
}

func decodePartBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		// Gmail omits padding on some parts
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// Ensure Provider implements out.MailProvider
var _ out.MailProvider = (*Provider)(nil)
