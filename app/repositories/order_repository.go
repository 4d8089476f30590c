package repositories

import (
	"context"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order and all its items atomically. GORM inserts
// the Items association inside the same transaction, so either the whole
// order lands or none of it does.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads one order with its items and their product relations.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order).Error
	return order, err
}

// FindByPaymentRef resolves the order attached to a payment-processor
// reference. Webhook handling depends on this lookup.
func (r *OrderRepository) FindByPaymentRef(ctx context.Context, ref string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("payment_ref = ?", ref).
		First(&order).Error
	return order, err
}

// ForUser returns a user's orders newest-first with items and product
// relations eagerly resolved.
func (r *OrderRepository) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// All returns a page of every user's orders, newest-first.
func (r *OrderRepository) All(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out).Error
	return out, total, err
}

// UpdateStatus writes the new status, guarded on the status the caller
// read. Returns false when the row no longer holds from, so concurrent
// transitions (webhook vs admin) cannot overwrite each other; legality of
// the transition itself is the service's responsibility.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// SetPaymentRef attaches the processor reference to an order.
func (r *OrderRepository) SetPaymentRef(ctx context.Context, id, ref string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_ref", ref).Error
}
