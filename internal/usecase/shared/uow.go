package shared

import (
	"context"
	"time"

	"tandaro-api/internal/domain/driverapp"
	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/domain/vehicle"
	"tandaro-api/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	Vehicles() VehicleRepository
	Users() UserRepository
	DriverApplications() DriverApplicationRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads are the write-side reads: full aggregates (for entity methods)
// and minimal snapshots, optionally locked for the enclosing transaction.
type CommandReads interface {
	VehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
	// VehicleByIDForUpdate locks the vehicle row; the lock serializes
	// concurrent booking attempts on the same vehicle.
	VehicleByIDForUpdate(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
	ActiveSlotsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]reservation.BookedSlot, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ApplicationByID(ctx context.Context, id uuid.UUID) (*driverapp.Application, error)
	ApplicationByIDForUpdate(ctx context.Context, id uuid.UUID) (*driverapp.Application, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) (uuid.UUID, error)
	Update(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error
}

type VehicleRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, v *vehicle.Vehicle) (uuid.UUID, error)
	Update(ctx context.Context, dbtx db.DBTX, v *vehicle.Vehicle) error
	Delete(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error
	UpdateRole(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, role user.Role) error
}

type DriverApplicationRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, app *driverapp.Application) (uuid.UUID, error)
	Update(ctx context.Context, dbtx db.DBTX, app *driverapp.Application) error
	Delete(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, resultHash string, reservationID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
