// Package jobs defines the background jobs the storefront dispatches.
// Register every job once at boot with RegisterAll.
package jobs

import (
	"context"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/database"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
)

// DownloadLogJob writes one audit row after a download URL was issued.
// It runs off the request path: a failed write is retried by the queue
// and, at worst, logged, never surfaced to the downloader.
type DownloadLogJob struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

func (DownloadLogJob) Name() string { return "download.log" }

func (j *DownloadLogJob) Handle(ctx context.Context) error {
	logs := repositories.NewDownloadLogRepository(database.DB)
	entry := models.DownloadLog{
		UserID:    j.UserID,
		IP:        j.IP,
		UserAgent: j.UserAgent,
	}
	if j.ProductID != "" {
		pid := j.ProductID
		entry.ProductID = &pid
	}
	return logs.Create(ctx, &entry)
}

// RegisterAll makes every job type known to the queue for deserialization.
func RegisterAll() {
	queue.Register("download.log", func() queue.Job { return &DownloadLogJob{} })
	queue.Register("order.receipt", func() queue.Job { return &ReceiptJob{} })
}
