package services

import (
	"context"
	"errors"
	"testing"

	"github.com/example/halalexpress/internal/models"
)

// stubProvider scripts provider responses for reconciler tests.
type stubProvider struct {
	webhookEvent *WebhookEvent
	webhookErr   error
}

func (p *stubProvider) CreateIntent(ctx context.Context, amountMinor int64, currency, orderID, userID string) (*IntentRef, error) {
	return nil, errors.New("not scripted")
}

func (p *stubProvider) RetrieveIntent(ctx context.Context, id string) (*IntentRef, error) {
	return nil, errors.New("not scripted")
}

func (p *stubProvider) Refund(ctx context.Context, in RefundInput) (string, error) {
	return "", errors.New("not scripted")
}

func (p *stubProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return p.webhookEvent, p.webhookErr
}

func TestMapIntentStatus(t *testing.T) {
	cases := []struct {
		provider string
		want     string
		ok       bool
	}{
		{"succeeded", models.PaymentStatusPaid, true},
		{"canceled", models.PaymentStatusFailed, true},
		{"requires_payment_method", models.PaymentStatusFailed, true},
		{"processing", "", false},
		{"requires_action", "", false},
		{"requires_confirmation", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := MapIntentStatus(tc.provider)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MapIntentStatus(%q) = (%q, %v), want (%q, %v)",
				tc.provider, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHandleWebhookVerificationFailure(t *testing.T) {
	svc := NewPaymentService(nil, nil, &stubProvider{
		webhookErr: errors.New("bad signature"),
	})

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "t=1,v1=bad")
	if !errors.Is(err, ErrWebhookVerification) {
		t.Fatalf("err = %v, want ErrWebhookVerification", err)
	}
}

func TestHandleWebhookIgnoresIrrelevantEvents(t *testing.T) {
	cases := []*WebhookEvent{
		{Type: "charge.updated"},
		{Type: "payment_intent.created", Intent: &IntentRef{ID: "pi_1", Status: "processing", OrderID: "not-acted-on"}},
	}

	for _, event := range cases {
		svc := NewPaymentService(nil, nil, &stubProvider{webhookEvent: event})
		if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
			t.Errorf("HandleWebhook(%s): %v", event.Type, err)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range models.OrderStatuses {
		if !models.ValidOrderStatus(status) {
			t.Errorf("expected %q to be valid", status)
		}
	}
	for _, status := range []string{"", "shipped", "Pending"} {
		if models.ValidOrderStatus(status) {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}

func TestValidPaymentStatus(t *testing.T) {
	for _, status := range []string{
		models.PaymentStatusUnpaid,
		models.PaymentStatusPending,
		models.PaymentStatusPaid,
		models.PaymentStatusFailed,
		models.PaymentStatusRefunded,
	} {
		if !models.ValidPaymentStatus(status) {
			t.Errorf("expected %q to be valid", status)
		}
	}
	if models.ValidPaymentStatus("settled") {
		t.Error("expected settled to be invalid")
	}
}
