package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderServerSidePricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 4500, 20)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 3600)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(3600), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(3600), order.Items[0].UnitPrice)
}

func TestCreateOrderRejectsTamperedTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 4500, 20)

	// Client claims the un-discounted base price.
	_, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 100)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// And a lowball attempt.
	_, err = f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	_, err := f.orders.Create(ctx, user.ID, nil, 0)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 0}}, 0)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: "3b7a4b46-0000-0000-0000-000000000000", Quantity: 1}}, 1000)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

// Orders are created pending only; nothing at creation time can assert paid.
func TestCreateOrderAlwaysPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 2000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 2}}, 4000)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
}

// Price-freeze: catalog changes after purchase never rewrite the ledger.
func TestOrderPriceFrozenAgainstCatalogChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 4500, 20)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 3600)
	require.NoError(t, err)

	// Raise the price and kill the discount.
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", 9900).Error)
	require.NoError(t, f.db.Model(&models.Discount{}).
		Where("id = ?", *product.DiscountID).
		Update("active", false).Error)

	reread, err := f.orders.Get(ctx, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), reread.Total)
	require.Len(t, reread.Items, 1)
	assert.Equal(t, int64(3600), reread.Items[0].UnitPrice)
}

func TestMarkStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	newOrder := func() models.Order {
		o, err := f.orders.Create(ctx, user.ID,
			[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
		require.NoError(t, err)
		return o
	}

	// pending -> paid -> fulfilled is the happy path.
	o := newOrder()
	_, err := f.orders.MarkStatus(ctx, o.ID, models.OrderPaid)
	require.NoError(t, err)
	_, err = f.orders.MarkStatus(ctx, o.ID, models.OrderFulfilled)
	require.NoError(t, err)

	// fulfilled is terminal.
	_, err = f.orders.MarkStatus(ctx, o.ID, models.OrderPaid)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// pending cannot skip to fulfilled.
	o = newOrder()
	_, err = f.orders.MarkStatus(ctx, o.ID, models.OrderFulfilled)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// pending -> failed is terminal.
	o = newOrder()
	_, err = f.orders.MarkStatus(ctx, o.ID, models.OrderFailed)
	require.NoError(t, err)
	_, err = f.orders.MarkStatus(ctx, o.ID, models.OrderPaid)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// unknown status is a validation error.
	_, err = f.orders.MarkStatus(ctx, o.ID, "shipped")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com", false)
	other := f.seedUser(t, "other@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, owner.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, order.ID, other.ID, false)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// view-all capability sees everything.
	got, err := f.orders.Get(ctx, order.ID, other.ID, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrdersForUserNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	first, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)
	// Push the second order's created_at past the first.
	require.NoError(t, f.db.Model(&models.Order{}).
		Where("id = ?", first.ID).
		Update("created_at", first.CreatedAt.Add(-time.Minute)).Error)

	second, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 2}}, 2000)
	require.NoError(t, err)

	orders, err := f.orders.ForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[0].Items, 1)
	require.NotNil(t, orders[0].Items[0].Product)
}

func TestStatusWriteGuardsAgainstConcurrentTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "u@example.com", false)
	product := f.seedProduct(t, 1000, 0)

	order, err := f.orders.Create(ctx, user.ID,
		[]LineInput{{ProductID: product.ID, Quantity: 1}}, 1000)
	require.NoError(t, err)

	// Two writers read the same pending order. The first lands.
	changed, err := f.orderRepo.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderPaid)
	require.NoError(t, err)
	assert.True(t, changed)

	// The second still holds the stale pending read and must not land.
	changed, err = f.orderRepo.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderFailed)
	require.NoError(t, err)
	assert.False(t, changed)

	reread, err := f.orders.Get(ctx, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, reread.Status)

	// The losing writer's move surfaces as a Conflict at the service.
	_, err = f.orders.MarkStatus(ctx, order.ID, models.OrderFailed)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestForeignKeyViolationDetection(t *testing.T) {
	assert.True(t, isForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, isForeignKeyViolation(errors.New(`insert or update on table "order_items" violates foreign key constraint (SQLSTATE 23503)`)))
	assert.True(t, isForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, isForeignKeyViolation(errors.New("Cannot add or update a child row: a foreign key constraint fails")))
	assert.False(t, isForeignKeyViolation(errors.New("connection reset by peer")))
}
