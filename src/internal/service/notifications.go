package service

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (s *Service) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	if userID == "" {
		return nil, invalid("userId required")
	}
	list, err := s.repo.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(err, "notifications")
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.ListNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range list {
		if !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, id)
	if err != nil {
		return n, s.fail(err, "notification")
	}
	return n, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, invalid("userId required")
	}
	n, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	return n, s.fail(err, "notifications")
}

// notify stores n. Failures are logged, not returned.
func (s *Service) notify(ctx context.Context, n model.Notification) {
	created, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		s.log.Error("notify: failed", zap.String("user", n.UserID), zap.String("key", n.TitleKey), zap.Error(err))
		return
	}
	s.log.Info("notify: success", zap.String("notification", created.ID), zap.String("user", n.UserID), zap.String("key", n.TitleKey))
}
