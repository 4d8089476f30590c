package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Entitlement soundness in both directions across every status: only paid
// and fulfilled orders grant, and only for the products they contain.
func TestCanDownloadAcrossStatuses(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		status models.OrderStatus
		want   bool
	}{
		{models.OrderPending, false},
		{models.OrderFailed, false},
		{models.OrderPaid, true},
		{models.OrderFulfilled, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t)
			user := f.seedUser(t, "u@example.com", false)
			product := f.seedProduct(t, 1000, 0)

			order, err := f.orders.Create(ctx, user.ID,
				[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
			require.NoError(t, err)
			require.NoError(t, f.db.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("status", tc.status).Error)

			got, err := f.entitlements.CanDownload(ctx, user.ID, product.ID, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanDownloadNoFalseGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.seedUser(t, "buyer@example.com", false)
	stranger := f.seedUser(t, "stranger@example.com", false)
	bought := f.seedProduct(t, 1000, 0)
	unbought := f.seedProduct(t, 2000, 0)

	order, err := f.orders.Create(ctx, buyer.ID,
		[]LineInput{{ProductID: bought.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	// The buyer gets the purchased product, not the other one.
	ok, err := f.entitlements.CanDownload(ctx, buyer.ID, bought.ID, false)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.entitlements.CanDownload(ctx, buyer.ID, unbought.ID, false)
	require.NoError(t, err)
	assert.False(t, ok)

	// A user with no orders gets nothing.
	ok, err = f.entitlements.CanDownload(ctx, stranger.ID, bought.ID, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanDownloadBypass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin@example.com", true)
	product := f.seedProduct(t, 1000, 0)

	// The download-any capability grants without any purchase.
	ok, err := f.entitlements.CanDownload(ctx, admin.ID, product.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Entitlement resolves the current file key under the purchased product
// id, so buyers receive replacement files pushed after purchase.
func TestResolveFileKeyTracksCurrentFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 1000, 0)

	key, err := f.entitlements.ResolveFileKey(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/asset.zip", key)

	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("file_key", "products/asset-v2.zip").Error)

	key, err = f.entitlements.ResolveFileKey(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/asset-v2.zip", key)
}

// Null-reference resilience: deleting a purchased product keeps the order
// and its totals intact and reports the asset as discontinued.
func TestDeletedProductDiscontinuesAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	kept := f.seedProduct(t, 1000, 0)
	doomed := f.seedProduct(t, 2000, 0)

	order, err := f.orders.Create(ctx, user.ID, []LineInput{
		{ProductID: kept.ID, Quantity: 1},
		{ProductID: doomed.ID, Quantity: 1},
	}, 3000)
	require.NoError(t, err)
	f.payOrder(t, order.ID)

	require.NoError(t, f.products.Delete(ctx, doomed.ID))

	// The order survives with its total and both items.
	reread, err := f.orders.Get(ctx, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), reread.Total)
	require.Len(t, reread.Items, 2)

	var nilled, intact int
	for _, item := range reread.Items {
		if item.ProductID == nil {
			nilled++
			assert.Equal(t, int64(2000), item.UnitPrice)
		} else {
			intact++
			assert.Equal(t, kept.ID, *item.ProductID)
		}
	}
	assert.Equal(t, 1, nilled)
	assert.Equal(t, 1, intact)

	// Entitlement no longer matches the deleted product id, and the key
	// resolves to discontinued rather than a dangling reference.
	ok, err := f.entitlements.CanDownload(ctx, user.ID, doomed.ID, false)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.entitlements.ResolveFileKey(ctx, doomed.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	// The surviving item still grants.
	ok, err = f.entitlements.CanDownload(ctx, user.ID, kept.ID, false)
	require.NoError(t, err)
	assert.True(t, ok)
}
