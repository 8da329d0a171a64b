package queue

import (
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is a job that exhausted its retries. The table is created
// by the migrations.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"index"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

var (
	failedDBMu  sync.RWMutex
	failedJobDB *gorm.DB
)

// UseDB persists failures to the failed_jobs table. Without it failures are
// only kept in memory.
func UseDB(db *gorm.DB) {
	failedDBMu.Lock()
	failedJobDB = db
	failedDBMu.Unlock()
}

func (m *Manager) persistFailed(name string, payload []byte, lastErr error, attempts int) {
	now := time.Now()

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{Type: name, Err: lastErr, FailedAt: now, Attempts: attempts})
	m.mu.Unlock()

	failedDBMu.RLock()
	db := failedJobDB
	failedDBMu.RUnlock()
	if db == nil {
		return
	}

	msg := ""
	if lastErr != nil {
		msg = lastErr.Error()
	}
	record := FailedJobRecord{
		JobType:  name,
		Payload:  string(payload),
		Error:    msg,
		Attempts: attempts,
		FailedAt: now,
	}
	if err := db.Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", name, "error", err)
	}
}
