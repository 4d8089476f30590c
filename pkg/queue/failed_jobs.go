package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FailedJobRecord persists a job that exhausted its retries, for later
// inspection or manual replay.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "kalakriti_failed_jobs" }

var failedJobDB *gorm.DB

// UseDB enables database persistence of failed jobs. Call once at boot,
// after database.Connect:
//
//	queue.UseDB(database.DB)
func UseDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&FailedJobRecord{}); err != nil {
		return fmt.Errorf("queue: migrate failed jobs table: %w", err)
	}
	failedJobDB = db
	return nil
}

func (m *Manager) persistFailed(job Job, lastErr error, attempts int) {
	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"marshal_error": %q}`, err.Error()))
	}

	record := FailedJobRecord{
		JobType:  job.Name(),
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	// Best effort: the failure is already logged by the caller.
	failedJobDB.Create(&record)
}
