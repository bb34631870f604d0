package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

// ListNotificationsByUser returns userID's notifications, newest first.
func (r *Repositories) ListNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	return do(ctx, r, "notifications", "list", func() ([]model.Notification, error) {
		return r.Notifications.Where(ctx, func(n model.Notification) bool { return n.UserID == userID })
	})
}

func (r *Repositories) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	return do(ctx, r, "notifications", "create", func() (model.Notification, error) {
		n.ID = r.newID("notif")
		n.CreatedAt = r.now()
		n.IsRead = false
		return r.Notifications.Insert(ctx, n, true)
	})
}

func (r *Repositories) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	return do(ctx, r, "notifications", "update", func() (model.Notification, error) {
		return r.Notifications.Update(ctx, id, func(n model.Notification) (model.Notification, error) {
			n.IsRead = true
			return n, nil
		})
	})
}

func (r *Repositories) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	return do(ctx, r, "notifications", "update", func() (int, error) {
		return r.Notifications.UpdateWhere(ctx,
			func(n model.Notification) bool { return n.UserID == userID && !n.IsRead },
			func(n model.Notification) model.Notification {
				n.IsRead = true
				return n
			})
	})
}
