package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/snaplist/snaplist-backend/internal/repository"
)

type NotificationService interface {
	// NotifyPurchase is best-effort; failures are logged, never returned,
	// so a dropped notification cannot fail a completed sale.
	NotifyPurchase(ctx context.Context, recipientUID, message string)
	List(ctx context.Context, recipientUID string, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id uint64, recipientUID string) error
	MarkAllRead(ctx context.Context, recipientUID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) NotifyPurchase(ctx context.Context, recipientUID, message string) {
	if recipientUID == "" || message == "" {
		return
	}
	n := &model.Notification{
		RecipientUID: recipientUID,
		Type:         model.NotificationTypePurchase,
		Message:      message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Warn().Str("recipient", recipientUID).Err(err).Msg("failed to create purchase notification")
	}
}

func (s *notificationService) List(ctx context.Context, recipientUID string, limit int) ([]model.Notification, int64, error) {
	if recipientUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByRecipient(ctx, recipientUID, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, recipientUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint64, recipientUID string) error {
	if recipientUID == "" || id == 0 {
		return nil
	}
	return s.repo.MarkRead(ctx, id, recipientUID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientUID string) error {
	if recipientUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, recipientUID)
}
