package services

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/kalakriti/app/jobs"
	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// PaymentService wraps the payment processor. It creates intents for
// pending orders and turns verified webhook events into order status
// transitions. The processor callback is the only path to paid; nothing
// the client asserts can move an order there.
type PaymentService struct {
	orders        *OrderService
	webhookSecret string
}

func NewPaymentService(orders *OrderService) *PaymentService {
	stripe.Key = config.StripeSecretKey()
	return &PaymentService{
		orders:        orders,
		webhookSecret: config.StripeWebhookSecret(),
	}
}

// IntentResult is returned to the client so the frontend can complete
// the payment flow against the processor directly.
type IntentResult struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent asks the processor for a payment intent covering the
// order's total. Amounts stay in minor units end to end; the order total
// is passed through untouched. The intent reference is attached to the
// order so the webhook can find it later.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID, userID string, viewAll bool) (IntentResult, error) {
	order, err := s.orders.Get(ctx, orderID, userID, viewAll)
	if err != nil {
		return IntentResult{}, err
	}
	if order.Status != models.OrderPending {
		return IntentResult{}, apperr.Newf(apperr.Conflict, "order is already %s", order.Status)
	}
	if order.Total <= 0 {
		return IntentResult{}, apperr.New(apperr.Validation, "order total must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(order.Total),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Metadata: map[string]string{"order_id": order.ID},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("failed").Inc()
		logger.WithCtx(ctx).Error("payment: create intent failed", "order_id", orderID, "error", err)
		return IntentResult{}, apperr.New(apperr.Unavailable, "payment service unavailable")
	}

	if err := s.orders.AttachPaymentRef(ctx, order.ID, intent.ID); err != nil {
		return IntentResult{}, err
	}

	metrics.PaymentIntents.WithLabelValues("created").Inc()
	return IntentResult{Reference: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// HandleWebhook verifies the processor's signature and applies the event
// to the order ledger. Unrecognised event types are acknowledged and
// ignored so the processor stops retrying them.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	// Accounts pin their own API version; the signature check is what
	// authenticates the event, so a version newer than the SDK's is fine.
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return apperr.Wrap(apperr.Unauthorized, "invalid webhook signature", err)
	}

	switch ev.Type {
	case "payment_intent.succeeded":
		return s.applyIntent(ctx, ev.Data.Raw, models.OrderPaid)
	case "payment_intent.payment_failed":
		return s.applyIntent(ctx, ev.Data.Raw, models.OrderFailed)
	default:
		logger.WithCtx(ctx).Debug("payment: ignoring webhook event", "type", string(ev.Type))
		return nil
	}
}

func (s *PaymentService) applyIntent(ctx context.Context, raw json.RawMessage, next models.OrderStatus) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return apperr.Wrap(apperr.Validation, "malformed webhook payload", err)
	}

	order, err := s.orders.ByPaymentRef(ctx, intent.ID)
	if err != nil {
		return err
	}

	// Processors redeliver events; an order already in the target state
	// is a successful no-op, not a conflict.
	if order.Status == next {
		return nil
	}

	if _, err := s.orders.MarkStatus(ctx, order.ID, next); err != nil {
		return err
	}

	if next == models.OrderPaid {
		if err := queue.Dispatch(&jobs.ReceiptJob{OrderID: order.ID}); err != nil {
			logger.WithCtx(ctx).Warn("payment: receipt dispatch failed", "order_id", order.ID, "error", err)
		}
	}
	return nil
}
