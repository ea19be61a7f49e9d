package repository

import (
	"context"
	"time"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

const tryInsertIdempotencySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO NOTHING`

// TryInsert claims the key. A no-op insert means another request holds it;
// the caller reads the existing record to decide how to respond.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	if _, err := dbtx.Exec(ctx, tryInsertIdempotencySQL, key, userID, endpoint, requestHash, expiresAt); err != nil {
		return infra.WrapRepoErr("failed to insert idempotency key", err, infra.ClassifyPgError(err))
	}
	return nil
}

const completeIdempotencySQL = `
UPDATE idempotency_keys
SET status = 'completed', request_hash = $3, reservation_id = $4
WHERE key = $1 AND user_id = $2`

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, resultHash string, reservationID uuid.UUID) error {
	if _, err := dbtx.Exec(ctx, completeIdempotencySQL, key, userID, resultHash, reservationID); err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}

const getIdempotencySQL = `
SELECT key, user_id, endpoint, request_hash, status, reservation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

func (r *IdempotencyRepository) Get(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		record        shared.IdempotencyRecord
		reservationID pgtype.UUID
		expiresAt     pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, getIdempotencySQL, key, userID).Scan(
		&record.Key, &record.UserID, &record.Endpoint, &record.RequestHash,
		&record.Status, &reservationID, &expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	record.ReservationID = pgconv.UUIDPtrFromPgtype(reservationID)
	record.ExpiresAt = expiresAt.Time
	return &record, nil
}

const deleteExpiredIdempotencySQL = `DELETE FROM idempotency_keys WHERE expires_at < now()`

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, dbtx db.DBTX) (int64, error) {
	tag, err := dbtx.Exec(ctx, deleteExpiredIdempotencySQL)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
