package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/BTreeMap/LeavePipe/internal/models"
	"github.com/BTreeMap/LeavePipe/internal/twiliowhatsapp"
)

func TestTwilioValidateAndCanonicalizeRecipient(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())

	cases := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"+15551234567", "15551234567", false},
		{"whatsapp:+1 (555) 123-4567", "15551234567", false},
		{"555-123-4567", "5551234567", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true},
	}
	for _, c := range cases {
		got, err := service.ValidateAndCanonicalizeRecipient(c.input)
		if c.wantErr {
			if err == nil {
				t.Errorf("ValidateAndCanonicalizeRecipient(%q): expected error, got %q", c.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateAndCanonicalizeRecipient(%q): unexpected error: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("ValidateAndCanonicalizeRecipient(%q) = %q, want %q", c.input, got, c.expected)
		}
	}
}

func TestTwilioSendMessageEmitsReceipt(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	service := NewTwilioService(mock)

	if err := service.SendMessage(context.Background(), "+15551234567", "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "15551234567" || mock.SentMessages[0].Body != "hello" {
		t.Errorf("unexpected sent message: %+v", mock.SentMessages[0])
	}

	select {
	case receipt := <-service.Receipts():
		if receipt.To != "15551234567" || receipt.Status != models.MessageStatusSent {
			t.Errorf("unexpected receipt: %+v", receipt)
		}
	default:
		t.Fatal("expected a sent receipt on the channel")
	}
}

func TestTwilioSendMessageInvalidRecipient(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	service := NewTwilioService(mock)

	if err := service.SendMessage(context.Background(), "not-a-number", "hello"); err == nil {
		t.Fatal("expected validation error for invalid recipient")
	}
	if len(mock.SentMessages) != 0 {
		t.Errorf("expected no sent messages, got %d", len(mock.SentMessages))
	}
}

func TestTwilioStoppedServiceRejectsSend(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())
	if err := service.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// Stop is idempotent.
	if err := service.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	if err := service.SendMessage(context.Background(), "+15551234567", "hello"); err != ErrServiceStopped {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
}

func TestTwilioWebhookHandler(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())

	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "I need 3 days leave")
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	service.TwilioWebhookHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	select {
	case resp := <-service.Responses():
		if resp.From != "whatsapp:+15551234567" {
			t.Errorf("unexpected sender: %q", resp.From)
		}
		if resp.Body != "I need 3 days leave" {
			t.Errorf("unexpected body: %q", resp.Body)
		}
		if resp.Time == 0 {
			t.Error("expected a receive timestamp")
		}
	default:
		t.Fatal("expected a response on the channel")
	}
}

func TestTwilioWebhookHandlerMissingFields(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())

	cases := map[string]url.Values{
		"missing body": {"From": {"whatsapp:+15551234567"}},
		"missing from": {"Body": {"hello"}},
		"empty form":   {},
	}
	for name, form := range cases {
		req := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		service.TwilioWebhookHandler(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rr.Code)
		}
	}
}

func TestTwilioWebhookAfterStopDropsResponse(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())
	if err := service.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "hello")
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	service.TwilioWebhookHandler(rr, req)

	// The webhook still acknowledges; the message is dropped internally.
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
