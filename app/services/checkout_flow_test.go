package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedWebhookPayload(t *testing.T, eventType, intentID string) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":     intentID,
				"object": "payment_intent",
			},
		},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

// The full purchase-to-download flow: a $45.00 asset with a 20% active
// discount checks out at $36.00, the processor webhook marks it paid, and
// only then does the buyer get a signed URL with the 600 second window.
func TestCheckoutToDownloadFlow(t *testing.T) {
	config.Set("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	f := newFixture(t)
	store := &fakeStore{}
	downloads := NewDownloadService(f.entitlements, store)
	payments := NewPaymentService(f.orders)

	ctx := context.Background()
	buyer := f.seedUser(t, "buyer@example.com", false)
	admin := f.seedUser(t, "admin@example.com", true)
	product := f.seedProduct(t, 4500, 20)

	// Checkout at the discounted price.
	order, err := f.orders.Create(ctx, buyer.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 3600)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), order.Total)
	assert.Equal(t, models.OrderPending, order.Status)

	// Still pending: no download yet.
	_, err = downloads.Grant(ctx, DownloadRequest{UserID: buyer.ID, ProductID: product.ID})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// The processor confirms payment through the signed webhook.
	require.NoError(t, f.orders.AttachPaymentRef(ctx, order.ID, "pi_test_123"))
	payload, sig := signedWebhookPayload(t, "payment_intent.succeeded", "pi_test_123")
	require.NoError(t, payments.HandleWebhook(ctx, payload, sig))

	paid, err := f.orders.Get(ctx, order.ID, buyer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, paid.Status)

	// Now the buyer is entitled.
	before := time.Now()
	grant, err := downloads.Grant(ctx, DownloadRequest{UserID: buyer.ID, ProductID: product.ID})
	require.NoError(t, err)
	assert.Contains(t, grant.URL, "products/asset.zip")
	within(t, before.Add(600*time.Second), grant.ExpiresAt, 5*time.Second)

	// An admin who never purchased also passes the check.
	ok, err := f.entitlements.CanDownload(ctx, admin.ID, product.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	// A stranger stays locked out.
	stranger := f.seedUser(t, "stranger@example.com", false)
	_, err = downloads.Grant(ctx, DownloadRequest{UserID: stranger.ID, ProductID: product.ID})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	config.Set("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	f := newFixture(t)
	payments := NewPaymentService(f.orders)

	payload, _ := signedWebhookPayload(t, "payment_intent.succeeded", "pi_test_456")
	err := payments.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestWebhookFailureMarksOrderFailed(t *testing.T) {
	config.Set("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	f := newFixture(t)
	payments := NewPaymentService(f.orders)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	require.NoError(t, f.orders.AttachPaymentRef(ctx, order.ID, "pi_fail_1"))

	payload, sig := signedWebhookPayload(t, "payment_intent.payment_failed", "pi_fail_1")
	require.NoError(t, payments.HandleWebhook(ctx, payload, sig))

	got, err := f.orders.Get(ctx, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderFailed, got.Status)
}

// Processors redeliver events; the second delivery must be a no-op.
func TestWebhookIsIdempotent(t *testing.T) {
	config.Set("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	f := newFixture(t)
	payments := NewPaymentService(f.orders)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	require.NoError(t, f.orders.AttachPaymentRef(ctx, order.ID, "pi_dup_1"))

	payload, sig := signedWebhookPayload(t, "payment_intent.succeeded", "pi_dup_1")
	require.NoError(t, payments.HandleWebhook(ctx, payload, sig))
	require.NoError(t, payments.HandleWebhook(ctx, payload, sig))

	got, err := f.orders.Get(ctx, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)
}
