package twiliowhatsapp

import (
	"context"
	"testing"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")

	if _, err := NewClient(); err == nil {
		t.Fatal("expected error when credentials are missing")
	}

	if _, err := NewClient(
		WithAccountSID("AC123"),
		WithAuthToken("secret"),
	); err == nil {
		t.Fatal("expected error when from number is missing")
	}
}

func TestNewClientWithOptions(t *testing.T) {
	client, err := NewClient(
		WithAccountSID("AC123"),
		WithAuthToken("secret"),
		WithFromWhats("whatsapp:+15550001111"),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.fromWhats != "whatsapp:+15550001111" {
		t.Errorf("unexpected from number: %q", client.fromWhats)
	}
}

func TestNewClientEnvFallback(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC456")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_NUMBER", "whatsapp:+15550002222")

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.fromWhats != "whatsapp:+15550002222" {
		t.Errorf("unexpected from number: %q", client.fromWhats)
	}
}

func TestMockClientRecordsMessages(t *testing.T) {
	mock := NewMockClient()

	if err := mock.SendMessage(context.Background(), "+15551234567", "first"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if err := mock.SendMessage(context.Background(), "+15557654321", "second"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(mock.SentMessages) != 2 {
		t.Fatalf("expected 2 recorded messages, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+15551234567" || mock.SentMessages[0].Body != "first" {
		t.Errorf("unexpected first message: %+v", mock.SentMessages[0])
	}
	if mock.SentMessages[1].To != "+15557654321" || mock.SentMessages[1].Body != "second" {
		t.Errorf("unexpected second message: %+v", mock.SentMessages[1])
	}
}
