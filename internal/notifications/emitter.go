package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/metrics"
	"github.com/enlapet/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Emitter records actor→recipient notification events after the primary
// mutation has committed. Emission is best-effort: a failed insert is logged
// and dropped, it never affects the transaction that triggered it.
type Emitter struct {
	db *gorm.DB
	wg sync.WaitGroup
}

// NewEmitter creates a notification emitter backed by db.
func NewEmitter(db *gorm.DB) *Emitter {
	return &Emitter{db: db}
}

// Event describes a single notification to record.
type Event struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	EntityID    string
	EntityType  string
}

// Emit records the event asynchronously. Self-notifications are skipped.
func (e *Emitter) Emit(ev Event) {
	if ev.RecipientID == "" || ev.RecipientID == ev.ActorID {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n := models.Notification{
			RecipientID: ev.RecipientID,
			ActorID:     ev.ActorID,
			Type:        ev.Type,
			EntityID:    ev.EntityID,
			EntityType:  ev.EntityType,
		}
		if err := e.db.WithContext(ctx).Create(&n).Error; err != nil {
			logger.Log.Warn("Failed to emit notification",
				zap.String("type", string(ev.Type)),
				zap.String("recipient_id", ev.RecipientID),
				zap.Error(err),
			)
			return
		}
		metrics.GetApplication().NotificationsEmitted.WithLabelValues(string(ev.Type)).Inc()
	}()
}

// Wait blocks until all in-flight emissions have finished. Used on shutdown
// and by tests that assert on emitted notifications.
func (e *Emitter) Wait() {
	e.wg.Wait()
}

// ListForRecipient returns a page of notifications, newest first.
func (e *Emitter) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.Notification, error) {
	var notifs []models.Notification
	err := e.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifs).Error
	return notifs, err
}

// UnreadCount returns how many notifications the recipient has not read yet.
func (e *Emitter) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead flags every unread notification for the recipient as read.
// This is a plain bulk update, not part of any counter transaction.
func (e *Emitter) MarkAllRead(ctx context.Context, recipientID string) error {
	return e.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}
