package messaging

import (
	"context"
	"testing"

	"github.com/BTreeMap/LeavePipe/internal/models"
	"github.com/BTreeMap/LeavePipe/internal/whatsapp"
)

func TestWhatsAppValidateAndCanonicalizeRecipient(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	got, err := service.ValidateAndCanonicalizeRecipient("+91 98765 43210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "919876543210" {
		t.Errorf("expected canonical 919876543210, got %q", got)
	}

	if _, err := service.ValidateAndCanonicalizeRecipient(""); err == nil {
		t.Error("expected error for empty recipient")
	}
	if _, err := service.ValidateAndCanonicalizeRecipient("123"); err == nil {
		t.Error("expected error for short recipient")
	}
}

func TestWhatsAppSendMessageEmitsReceipt(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	if err := service.SendMessage(context.Background(), "+919876543210", "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	select {
	case receipt := <-service.Receipts():
		if receipt.To != "919876543210" || receipt.Status != models.MessageStatusSent {
			t.Errorf("unexpected receipt: %+v", receipt)
		}
	default:
		t.Fatal("expected a sent receipt on the channel")
	}
}

func TestWhatsAppStartWithMockClient(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	// A mock client has no event stream; Start should still succeed.
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := service.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
