package repositories

import (
	"context"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"gorm.io/gorm"
)

// DownloadLogRepository persists the download audit trail.
type DownloadLogRepository struct {
	db *gorm.DB
}

func NewDownloadLogRepository(db *gorm.DB) *DownloadLogRepository {
	return &DownloadLogRepository{db: db}
}

func (r *DownloadLogRepository) Create(ctx context.Context, l *models.DownloadLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// ForUser returns the newest-first audit rows for one user.
func (r *DownloadLogRepository) ForUser(ctx context.Context, userID string, limit int) ([]models.DownloadLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var out []models.DownloadLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
