package services

import (
	"context"
	"encoding/json"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"
)

// stripeProvider is the live Stripe-backed PaymentProvider.
type stripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the Stripe SDK with the secret key and
// returns a provider verifying webhooks against webhookSecret.
func NewStripeProvider(secretKey, webhookSecret string) PaymentProvider {
	stripe.Key = secretKey
	return &stripeProvider{webhookSecret: webhookSecret}
}

func (p *stripeProvider) CreateIntent(ctx context.Context, amountMinor int64, currency, orderID, userID string) (*IntentRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("user_id", userID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return intentRef(intent), nil
}

func (p *stripeProvider) RetrieveIntent(ctx context.Context, id string) (*IntentRef, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	intent, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}
	return intentRef(intent), nil
}

func (p *stripeProvider) Refund(ctx context.Context, in RefundInput) (string, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(in.ChargeID),
	}
	params.Context = ctx
	if in.AmountMinor != nil {
		params.Amount = stripe.Int64(*in.AmountMinor)
	}
	params.AddMetadata("order_id", in.OrderID)
	params.AddMetadata("payment_id", in.PaymentID)

	r, err := refund.New(params)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func (p *stripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, err
	}

	result := &WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, err
		}
		result.Intent = intentRef(&intent)
	}
	return result, nil
}

func intentRef(intent *stripe.PaymentIntent) *IntentRef {
	ref := &IntentRef{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
	if intent.Metadata != nil {
		ref.OrderID = intent.Metadata["order_id"]
	}
	if intent.LatestCharge != nil {
		ref.ChargeID = intent.LatestCharge.ID
	}
	return ref
}
