package repository

import (
	"context"

	"github.com/snaplist/snaplist-backend/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientUID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uint64, recipientUID string) error
	MarkAllRead(ctx context.Context, recipientUID string) error
	CountUnread(ctx context.Context, recipientUID string) (int64, error)
	SetDB(db *gorm.DB)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientUID string, limit int) ([]model.Notification, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient_uid = ?", recipientUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead is idempotent: re-marking an already-read row matches zero
// rows and is not an error.
func (r *notificationRepository) MarkRead(ctx context.Context, id uint64, recipientUID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_uid = ? AND `read` = ?", id, recipientUID, false).
		Update("read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientUID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_uid = ? AND `read` = ?", recipientUID, false).
		Update("read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientUID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_uid = ? AND `read` = ?", recipientUID, false).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *notificationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
