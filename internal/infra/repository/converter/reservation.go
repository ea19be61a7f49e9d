package converter

import (
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReservationRow mirrors the reservations table columns used on the write
// side. Nullable columns stay as pgtype values until conversion.
type ReservationRow struct {
	ID               uuid.UUID
	VehicleID        uuid.UUID
	CustomerID       uuid.UUID
	CustomerName     string
	CustomerPhone    string
	StartTime        time.Time
	DurationHours    float64
	Status           string
	TotalPriceCents  int64
	PaidAmountCents  int64
	DriverID         pgtype.UUID
	DriverPhone      pgtype.Text
	AssignedAt       pgtype.Timestamptz
	PickupLocation   string
	DeliveryLocation string
	Images           []string
	SignatureURL     pgtype.Text
	Note             string
	StartedAt        pgtype.Timestamptz
	CompletedAt      pgtype.Timestamptz
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ReservationToDomain(row ReservationRow) (*reservation.Reservation, error) {
	slot, err := reservation.NewTimeSlot(row.StartTime, row.DurationHours)
	if err != nil {
		return nil, err
	}

	status, err := reservation.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}

	var assignment *reservation.DriverAssignment
	if driverID := pgconv.UUIDPtrFromPgtype(row.DriverID); driverID != nil {
		phone := ""
		if p := pgconv.StringPtrFromPgtype(row.DriverPhone); p != nil {
			phone = *p
		}
		assignment = &reservation.DriverAssignment{
			DriverID:   *driverID,
			Phone:      phone,
			AssignedAt: row.AssignedAt.Time,
		}
	}

	return reservation.ReconstructReservation(
		row.ID,
		row.VehicleID,
		reservation.CustomerSnapshot{
			UserID: row.CustomerID,
			Name:   row.CustomerName,
			Phone:  row.CustomerPhone,
		},
		slot,
		status,
		reservation.ReconstructPayment(
			reservation.NewMoney(row.TotalPriceCents),
			reservation.NewMoney(row.PaidAmountCents),
		),
		assignment,
		row.PickupLocation,
		row.DeliveryLocation,
		row.Images,
		pgconv.StringPtrFromPgtype(row.SignatureURL),
		reservation.NewNote(row.Note),
		pgconv.TimePtrFromPgtype(row.StartedAt),
		pgconv.TimePtrFromPgtype(row.CompletedAt),
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}
