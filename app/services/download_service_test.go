package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore signs deterministic URLs and records what it was asked for.
type fakeStore struct {
	signedKeys []string
	failSign   bool
}

func (s *fakeStore) PresignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.failSign {
		return "", errors.New("provider rejected request")
	}
	s.signedKeys = append(s.signedKeys, key)
	return fmt.Sprintf("https://bucket.test/%s?sig=abc&ttl=%d", key, int(ttl.Seconds())), nil
}

func (s *fakeStore) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	if s.failSign {
		return "", errors.New("provider rejected request")
	}
	return "https://bucket.test/upload/" + key, nil
}

func (s *fakeStore) Put(context.Context, string, io.Reader, string) error { return nil }
func (s *fakeStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}
func (s *fakeStore) Delete(context.Context, string) error         { return nil }
func (s *fakeStore) Exists(context.Context, string) (bool, error) { return true, nil }
func (s *fakeStore) PublicURL(key string) string                  { return "https://bucket.test/" + key }

// failingDriver rejects every push, standing in for a dead Redis.
type failingDriver struct{}

func (failingDriver) Push([]byte) error                    { return errors.New("queue down") }
func (failingDriver) Pop(ctx context.Context) ([]byte, error) { <-ctx.Done(); return nil, ctx.Err() }

func newDownloadFixture(t *testing.T) (*fixture, *fakeStore, *DownloadService) {
	f := newFixture(t)
	store := &fakeStore{}
	return f, store, NewDownloadService(f.entitlements, store)
}

func TestGrantIssuesSignedURL(t *testing.T) {
	f, store, downloads := newDownloadFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	before := time.Now()
	grant, err := downloads.Grant(ctx, DownloadRequest{
		UserID:    user.ID,
		ProductID: product.ID,
		IP:        "203.0.113.9",
		UserAgent: "curl/8",
	})
	require.NoError(t, err)

	assert.Contains(t, grant.URL, "products/asset.zip")
	assert.Equal(t, []string{"products/asset.zip"}, store.signedKeys)
	// Default TTL of 600s.
	within(t, before.Add(600*time.Second), grant.ExpiresAt, 5*time.Second)
}

func TestGrantForbiddenWithoutPurchase(t *testing.T) {
	f, store, downloads := newDownloadFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "v@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	_, err := downloads.Grant(ctx, DownloadRequest{UserID: user.ID, ProductID: product.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	// The entitlement check runs first; no URL was ever minted.
	assert.Empty(t, store.signedKeys)
}

func TestGrantAdminBypass(t *testing.T) {
	f, _, downloads := newDownloadFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin@example.com", true)
	product := f.seedProduct(t, 1000, 0)

	grant, err := downloads.Grant(ctx, DownloadRequest{
		UserID:    admin.ID,
		ProductID: product.ID,
		Bypass:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, grant.URL, "products/asset.zip")
}

func TestGrantSigningFailureIsUnavailable(t *testing.T) {
	f, store, downloads := newDownloadFixture(t)
	store.failSign = true
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	_, err = downloads.Grant(ctx, DownloadRequest{UserID: user.ID, ProductID: product.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.Unavailable, apperr.KindOf(err))
	// The provider's raw error never reaches the client message.
	assert.NotContains(t, apperr.Message(err), "provider")
}

// Audit logging is best-effort: a dead queue never costs a download.
func TestGrantSurvivesAuditQueueFailure(t *testing.T) {
	f, _, downloads := newDownloadFixture(t)
	queue.SetDriver(failingDriver{})
	t.Cleanup(func() { queue.SetDriver(queue.NewMemoryDriver()) })

	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	grant, err := downloads.Grant(ctx, DownloadRequest{UserID: user.ID, ProductID: product.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, grant.URL)
}

func TestIssueUploadNamespaces(t *testing.T) {
	_, _, downloads := newDownloadFixture(t)
	ctx := context.Background()

	pub, err := downloads.IssueUpload(ctx, "image/png", true)
	require.NoError(t, err)
	assert.Contains(t, pub.Key, "public/")

	priv, err := downloads.IssueUpload(ctx, "application/zip", false)
	require.NoError(t, err)
	assert.Contains(t, priv.Key, "products/")

	_, err = downloads.IssueUpload(ctx, "", false)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestPublicFileURLScoping(t *testing.T) {
	_, _, downloads := newDownloadFixture(t)
	ctx := context.Background()

	url, err := downloads.PublicFileURL(ctx, "public/preview.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "public/preview.jpg")

	// The unauthenticated path can never sign a product file.
	_, err = downloads.PublicFileURL(ctx, "products/asset.zip")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestGrantReportsDeletedProductAsDiscontinued(t *testing.T) {
	f, store, downloads := newDownloadFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 2000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 2000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	require.NoError(t, f.products.Delete(ctx, product.ID))

	// A buyer of a since-removed asset gets "discontinued", not an
	// ownership refusal.
	_, err = downloads.Grant(ctx, DownloadRequest{UserID: user.ID, ProductID: product.ID})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "asset discontinued")
	assert.Empty(t, store.signedKeys)
}
