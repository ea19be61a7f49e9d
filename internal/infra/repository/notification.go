package repository

import (
	"context"
	"time"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createNotificationJobSQL = `
INSERT INTO notification_jobs (kind, topic, payload, status, run_at)
VALUES ($1, $2, $3, 'pending', $4)`

// CreateJob enqueues an outbox row in the caller's transaction so the
// notification is only visible once the business change commits.
func (r *NotificationRepository) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	if _, err := dbtx.Exec(ctx, createNotificationJobSQL, kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
