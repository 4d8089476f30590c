package repositories

import (
	"context"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"gorm.io/gorm"
)

// DiscountRepository handles database operations for Discount.
type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) FindByID(ctx context.Context, id string) (models.Discount, error) {
	var d models.Discount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	return d, err
}

func (r *DiscountRepository) List(ctx context.Context) ([]models.Discount, error) {
	var out []models.Discount
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

func (r *DiscountRepository) Create(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DiscountRepository) Update(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// Delete detaches the discount from any product before removing it, so
// products fall back to their base price instead of dangling.
func (r *DiscountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("discount_id = ?", id).
			Update("discount_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Discount{}).Error
	})
}
