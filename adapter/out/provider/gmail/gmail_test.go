package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestUnreadQuery(t *testing.T) {
	since := time.Unix(1700000000, 0)
	query := unreadQuery(since)
	expected := "is:unread after:1700000000"
	if query != expected {
		t.Errorf("expected %q, got %q", expected, query)
	}
}

func TestParseMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		Snippet:      "Quick update on the launch",
		InternalDate: 1700000000000,
		LabelIds:     []string{"INBOX", "UNREAD", "IMPORTANT"},
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Jordan Kim <jordan@example.com>"},
				{Name: "Subject", Value: "Launch update"},
				{Name: "Date", Value: "Tue, 14 Nov 2023 22:13:20 +0000"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("Everything is on track for Friday.")},
		},
	}

	pm := parseMessage(msg)

	if pm.ID != "msg-1" || pm.ThreadID != "thread-1" {
		t.Errorf("unexpected ids: %s / %s", pm.ID, pm.ThreadID)
	}
	if pm.Sender != "Jordan Kim <jordan@example.com>" {
		t.Errorf("unexpected sender: %q", pm.Sender)
	}
	if pm.Subject != "Launch update" {
		t.Errorf("unexpected subject: %q", pm.Subject)
	}
	if !pm.IsImportant {
		t.Error("expected IsImportant for IMPORTANT label")
	}
	if pm.IsRead {
		t.Error("expected IsRead false while UNREAD label present")
	}
	if pm.Body != "Everything is on track for Friday." {
		t.Errorf("unexpected body: %q", pm.Body)
	}
	if pm.ReceivedAt.Unix() != 1700000000 {
		t.Errorf("unexpected received time: %v", pm.ReceivedAt)
	}
}

func TestParseMessageReadWithoutUnreadLabel(t *testing.T) {
	msg := &gmail.Message{
		Id:       "msg-2",
		LabelIds: []string{"INBOX"},
	}

	pm := parseMessage(msg)
	if !pm.IsRead {
		t.Error("expected IsRead true without UNREAD label")
	}
	if pm.IsImportant {
		t.Error("expected IsImportant false without IMPORTANT label")
	}
	if pm.Body != "" {
		t.Errorf("expected empty body without payload, got %q", pm.Body)
	}
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name     string
		payload  *gmail.MessagePart
		expected string
	}{
		{
			name:     "nil payload",
			payload:  nil,
			expected: "",
		},
		{
			name: "single text part",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encodeBody("plain body")},
			},
			expected: "plain body",
		},
		{
			name: "plain preferred over html",
			payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: encodeBody("<p>html body</p>")},
					},
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encodeBody("plain body")},
					},
				},
			},
			expected: "plain body",
		},
		{
			name: "html fallback when no plain",
			payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: encodeBody("<p>html body</p>")},
					},
				},
			},
			expected: "<p>html body</p>",
		},
		{
			name: "nested multipart one level",
			payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{
								MimeType: "text/plain",
								Body:     &gmail.MessagePartBody{Data: encodeBody("nested plain")},
							},
						},
					},
				},
			},
			expected: "nested plain",
		},
		{
			name: "attachment only",
			payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "application/pdf",
						Body:     &gmail.MessagePartBody{Data: encodeBody("binary")},
					},
				},
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractBody(tt.payload, 0)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDecodePartBody(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("padded body"))
	raw := base64.RawURLEncoding.EncodeToString([]byte("unpadded body"))

	tests := []struct {
		name     string
		part     *gmail.MessagePart
		expected string
	}{
		{
			name:     "nil body",
			part:     &gmail.MessagePart{},
			expected: "",
		},
		{
			name:     "padded encoding",
			part:     &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: padded}},
			expected: "padded body",
		},
		{
			name:     "unpadded encoding",
			part:     &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: raw}},
			expected: "unpadded body",
		},
		{
			name:     "invalid data",
			part:     &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: "!!not base64!!"}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := decodePartBody(tt.part)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestHasLabel(t *testing.T) {
	labels := []string{"INBOX", "UNREAD"}
	if !hasLabel(labels, "UNREAD") {
		t.Error("expected UNREAD to be found")
	}
	if hasLabel(labels, "IMPORTANT") {
		t.Error("expected IMPORTANT to be absent")
	}
	if hasLabel(nil, "INBOX") {
		t.Error("expected no match on nil labels")
	}
}
