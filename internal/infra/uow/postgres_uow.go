package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"tandaro-api/internal/domain/driverapp"
	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/domain/vehicle"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/infra/repository"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, pgxTx); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	reservationRepo  *repository.ReservationRepository
	vehicleRepo      *repository.VehicleRepository
	userRepo         *repository.UserRepository
	applicationRepo  *repository.DriverApplicationRepository
	idempotencyRepo  *repository.IdempotencyRepository
	notificationRepo *repository.NotificationRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository()
	}
	return t.reservationRepo
}

func (t *pgTx) Vehicles() shared.VehicleRepository {
	if t.vehicleRepo == nil {
		t.vehicleRepo = repository.NewVehicleRepository()
	}
	return t.vehicleRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository()
	}
	return t.userRepo
}

func (t *pgTx) DriverApplications() shared.DriverApplicationRepository {
	if t.applicationRepo == nil {
		t.applicationRepo = repository.NewDriverApplicationRepository()
	}
	return t.applicationRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository()
	}
	return t.idempotencyRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository()
	}
	return t.notificationRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

// commandReads resolves write-side reads against whatever dbtx it was built
// on: the pool outside a transaction, the pgx.Tx inside one. Row locks from
// the ForUpdate variants therefore live exactly as long as the transaction.
type commandReads struct {
	dbtx db.DBTX

	reservationRepo *repository.ReservationRepository
	vehicleRepo     *repository.VehicleRepository
	userRepo        *repository.UserRepository
	applicationRepo *repository.DriverApplicationRepository
	idempotencyRepo *repository.IdempotencyRepository
}

func (r *commandReads) reservations() *repository.ReservationRepository {
	if r.reservationRepo == nil {
		r.reservationRepo = repository.NewReservationRepository()
	}
	return r.reservationRepo
}

func (r *commandReads) vehicles() *repository.VehicleRepository {
	if r.vehicleRepo == nil {
		r.vehicleRepo = repository.NewVehicleRepository()
	}
	return r.vehicleRepo
}

func (r *commandReads) users() *repository.UserRepository {
	if r.userRepo == nil {
		r.userRepo = repository.NewUserRepository()
	}
	return r.userRepo
}

func (r *commandReads) applications() *repository.DriverApplicationRepository {
	if r.applicationRepo == nil {
		r.applicationRepo = repository.NewDriverApplicationRepository()
	}
	return r.applicationRepo
}

func (r *commandReads) idempotency() *repository.IdempotencyRepository {
	if r.idempotencyRepo == nil {
		r.idempotencyRepo = repository.NewIdempotencyRepository()
	}
	return r.idempotencyRepo
}

func (r *commandReads) VehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	return r.vehicles().FindByID(ctx, r.dbtx, id, false)
}

func (r *commandReads) VehicleByIDForUpdate(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	return r.vehicles().FindByID(ctx, r.dbtx, id, true)
}

func (r *commandReads) ActiveSlotsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]reservation.BookedSlot, error) {
	return r.reservations().ActiveSlotsByVehicle(ctx, r.dbtx, vehicleID)
}

func (r *commandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.reservations().FindByID(ctx, r.dbtx, id, false)
}

func (r *commandReads) ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.reservations().FindByID(ctx, r.dbtx, id, true)
}

func (r *commandReads) UserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.users().FindByID(ctx, r.dbtx, id)
}

func (r *commandReads) ApplicationByID(ctx context.Context, id uuid.UUID) (*driverapp.Application, error) {
	return r.applications().FindByID(ctx, r.dbtx, id, false)
}

func (r *commandReads) ApplicationByIDForUpdate(ctx context.Context, id uuid.UUID) (*driverapp.Application, error) {
	return r.applications().FindByID(ctx, r.dbtx, id, true)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.idempotency().Get(ctx, r.dbtx, key, userID)
}
