package repository

import (
	"context"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/infra/repository/converter"
	"tandaro-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

const createReservationSQL = `
INSERT INTO reservations (
    vehicle_id, customer_id, customer_name, customer_phone,
    start_time, duration_hours, slot, status,
    total_price_cents, paid_amount_cents,
    pickup_location, delivery_location, note
) VALUES (
    $1, $2, $3, $4,
    $5, $6, tstzrange($5, $7, '[)'), $8,
    $9, $10,
    $11, $12, $13
)
RETURNING id`

// Create inserts a new reservation. An overlap with another active
// reservation on the same vehicle violates the exclusion constraint and is
// reported as a CONFLICT kind.
func (r *ReservationRepository) Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	slot := res.Slot()
	customer := res.Customer()

	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createReservationSQL,
		res.VehicleID(),
		customer.UserID,
		customer.Name,
		customer.Phone,
		slot.Start(),
		slot.DurationHours(),
		slot.End(),
		res.Status().String(),
		res.Payment().Total().Cents(),
		res.Payment().Paid().Cents(),
		res.PickupLocation(),
		res.DeliveryLocation(),
		res.Note().String(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err, infra.ClassifyPgError(err))
	}

	return id, nil
}

const updateReservationSQL = `
UPDATE reservations
SET status = $2,
    total_price_cents = $3,
    paid_amount_cents = $4,
    driver_id = $5,
    driver_phone = $6,
    assigned_at = $7,
    images = $8,
    signature_url = $9,
    note = $10,
    started_at = $11,
    completed_at = $12,
    updated_at = now()
WHERE id = $1`

// Update persists the mutable part of the aggregate. The slot and customer
// snapshot are immutable after creation.
func (r *ReservationRepository) Update(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error {
	var (
		driverID    pgtype.UUID
		driverPhone pgtype.Text
		assignedAt  pgtype.Timestamptz
	)
	if a := res.Assignment(); a != nil {
		driverID = pgconv.UUIDToPgtype(a.DriverID)
		driverPhone = pgconv.StringToPgtype(a.Phone)
		assignedAt = pgconv.TimeToPgtype(a.AssignedAt)
	}

	var startedAt, completedAt pgtype.Timestamptz
	if t := res.StartedAt(); t != nil {
		startedAt = pgconv.TimeToPgtype(*t)
	}
	if t := res.CompletedAt(); t != nil {
		completedAt = pgconv.TimeToPgtype(*t)
	}

	tag, err := dbtx.Exec(ctx, updateReservationSQL,
		res.ID(),
		res.Status().String(),
		res.Payment().Total().Cents(),
		res.Payment().Paid().Cents(),
		driverID,
		driverPhone,
		assignedAt,
		res.Images(),
		pgconv.StringPtrToPgtype(res.SignatureURL()),
		res.Note().String(),
		startedAt,
		completedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err, infra.ClassifyPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}

	return nil
}

const findReservationByIDSQL = `
SELECT id, vehicle_id, customer_id, customer_name, customer_phone,
       start_time, duration_hours, status,
       total_price_cents, paid_amount_cents,
       driver_id, driver_phone, assigned_at,
       pickup_location, delivery_location, images, signature_url, note,
       started_at, completed_at, created_at, updated_at
FROM reservations
WHERE id = $1`

func (r *ReservationRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID, forUpdate bool) (*reservation.Reservation, error) {
	query := findReservationByIDSQL
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row converter.ReservationRow
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.VehicleID, &row.CustomerID, &row.CustomerName, &row.CustomerPhone,
		&row.StartTime, &row.DurationHours, &row.Status,
		&row.TotalPriceCents, &row.PaidAmountCents,
		&row.DriverID, &row.DriverPhone, &row.AssignedAt,
		&row.PickupLocation, &row.DeliveryLocation, &row.Images, &row.SignatureURL, &row.Note,
		&row.StartedAt, &row.CompletedAt, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}

	return converter.ReservationToDomain(row)
}

const activeSlotsByVehicleSQL = `
SELECT id, start_time, duration_hours
FROM reservations
WHERE vehicle_id = $1
  AND status NOT IN ('completed', 'cancelled')
ORDER BY start_time`

// ActiveSlotsByVehicle returns the busy intervals that block new bookings.
func (r *ReservationRepository) ActiveSlotsByVehicle(ctx context.Context, dbtx db.DBTX, vehicleID uuid.UUID) ([]reservation.BookedSlot, error) {
	rows, err := dbtx.Query(ctx, activeSlotsByVehicleSQL, vehicleID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active slots", err)
	}
	defer rows.Close()

	var slots []reservation.BookedSlot
	for rows.Next() {
		var (
			id            uuid.UUID
			startTime     pgtype.Timestamptz
			durationHours float64
		)
		if err := rows.Scan(&id, &startTime, &durationHours); err != nil {
			return nil, infra.WrapRepoErr("failed to scan active slot", err)
		}

		slot, err := reservation.NewTimeSlot(startTime.Time, durationHours)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid slot stored for reservation", err)
		}
		slots = append(slots, reservation.BookedSlot{ReservationID: id, Slot: slot})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate active slots", err)
	}

	return slots, nil
}
