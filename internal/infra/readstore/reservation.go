package readstore

import (
	"context"
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"
	"tandaro-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

const reservationViewSQL = `
SELECT r.id, r.vehicle_id, v.name AS vehicle_name,
       r.customer_id, r.customer_name, r.customer_phone,
       r.start_time, r.duration_hours, r.status,
       r.total_price_cents, r.paid_amount_cents,
       r.driver_id, d.name AS driver_name, r.driver_phone, r.assigned_at,
       r.pickup_location, r.delivery_location, r.images, r.signature_url, r.note,
       r.started_at, r.completed_at, r.created_at, r.updated_at
FROM reservations r
JOIN vehicles v ON v.id = r.vehicle_id
LEFT JOIN users d ON d.id = r.driver_id
WHERE r.id = $1`

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	view, err := scanReservationView(s.db.QueryRow(ctx, reservationViewSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return view, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservationView(row rowScanner) (*queries.ReservationView, error) {
	var (
		view        queries.ReservationView
		driverID    pgtype.UUID
		driverName  pgtype.Text
		driverPhone pgtype.Text
		assignedAt  pgtype.Timestamptz
		signature   pgtype.Text
		note        string
		startedAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.VehicleID, &view.VehicleName,
		&view.CustomerID, &view.CustomerName, &view.CustomerPhone,
		&view.StartTime, &view.DurationHours, &view.Status,
		&view.TotalPriceCents, &view.PaidAmountCents,
		&driverID, &driverName, &driverPhone, &assignedAt,
		&view.PickupLocation, &view.DeliveryLocation, &view.Images, &signature, &note,
		&startedAt, &completedAt, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	view.EndTime = view.StartTime.Add(hoursToDuration(view.DurationHours))
	view.PaymentStatus = derivePaymentStatus(view.TotalPriceCents, view.PaidAmountCents)
	view.DriverID = pgconv.UUIDPtrFromPgtype(driverID)
	view.DriverName = pgconv.StringPtrFromPgtype(driverName)
	view.DriverPhone = pgconv.StringPtrFromPgtype(driverPhone)
	view.AssignedAt = pgconv.TimePtrFromPgtype(assignedAt)
	view.SignatureURL = pgconv.StringPtrFromPgtype(signature)
	if note != "" {
		view.Note = &note
	}
	view.StartedAt = pgconv.TimePtrFromPgtype(startedAt)
	view.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	return &view, nil
}

const reservationListSQL = `
SELECT r.id, r.vehicle_id, v.name AS vehicle_name, r.customer_name,
       r.start_time, r.duration_hours, r.status,
       r.total_price_cents, r.paid_amount_cents,
       r.driver_id, d.name AS driver_name,
       r.created_at
FROM reservations r
JOIN vehicles v ON v.id = r.vehicle_id
LEFT JOIN users d ON d.id = r.driver_id`

func (s *ReservationReadStore) FindByCustomerFirstPage(ctx context.Context, customerID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	query := reservationListSQL + `
WHERE r.customer_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2`
	return s.queryListItems(ctx, query, customerID, limit)
}

func (s *ReservationReadStore) FindByCustomerKeyset(ctx context.Context, customerID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	query := reservationListSQL + `
WHERE r.customer_id = $1
  AND (r.created_at, r.id) < ($2, $3)
ORDER BY r.created_at DESC, r.id DESC
LIMIT $4`
	return s.queryListItems(ctx, query, customerID, pgconv.TimeToPgtype(lastCreatedAt), lastID, limit)
}

const adminListLimit = 200

// FindForAdmin lists reservations across all customers, newest first.
func (s *ReservationReadStore) FindForAdmin(ctx context.Context, filter queries.AdminFilter) ([]*queries.ReservationListItem, error) {
	query := reservationListSQL + `
WHERE ($1 = '' OR r.status = $1)
  AND ($2::uuid IS NULL OR r.vehicle_id = $2)
  AND ($3::uuid IS NULL OR r.driver_id = $3)
  AND ($4::timestamptz IS NULL OR r.start_time >= $4)
  AND ($5::timestamptz IS NULL OR r.start_time < $5)
ORDER BY r.created_at DESC, r.id DESC
LIMIT $6`
	return s.queryListItems(ctx, query,
		filter.Status,
		pgconv.UUIDPtrToPgtype(filter.VehicleID),
		pgconv.UUIDPtrToPgtype(filter.DriverID),
		pgconv.TimePtrToPgtype(filter.From),
		pgconv.TimePtrToPgtype(filter.To),
		adminListLimit,
	)
}

func (s *ReservationReadStore) queryListItems(ctx context.Context, query string, args ...any) ([]*queries.ReservationListItem, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var result []*queries.ReservationListItem
	for rows.Next() {
		var (
			item       queries.ReservationListItem
			driverID   pgtype.UUID
			driverName pgtype.Text
		)
		err := rows.Scan(
			&item.ID, &item.VehicleID, &item.VehicleName, &item.CustomerName,
			&item.StartTime, &item.DurationHours, &item.Status,
			&item.TotalPriceCents, &item.PaidAmountCents,
			&driverID, &driverName,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		item.EndTime = item.StartTime.Add(hoursToDuration(item.DurationHours))
		item.PaymentStatus = derivePaymentStatus(item.TotalPriceCents, item.PaidAmountCents)
		item.DriverID = pgconv.UUIDPtrFromPgtype(driverID)
		item.DriverName = pgconv.StringPtrFromPgtype(driverName)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}

	return result, nil
}

const driverJobsSQL = `
SELECT r.id, v.name AS vehicle_name, r.customer_name, r.customer_phone,
       r.start_time, r.duration_hours, r.status,
       r.pickup_location, r.delivery_location, r.note,
       r.started_at, r.completed_at
FROM reservations r
JOIN vehicles v ON v.id = r.vehicle_id
WHERE r.driver_id = $1
ORDER BY r.start_time`

// FindByDriver returns every job ever assigned to the driver, cancelled
// ones included; bucketing into today/upcoming/completed happens in the
// query layer.
func (s *ReservationReadStore) FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*queries.JobListItem, error) {
	rows, err := s.db.Query(ctx, driverJobsSQL, driverID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list driver jobs", err)
	}
	defer rows.Close()

	var result []*queries.JobListItem
	for rows.Next() {
		var (
			item        queries.JobListItem
			note        string
			startedAt   pgtype.Timestamptz
			completedAt pgtype.Timestamptz
		)
		err := rows.Scan(
			&item.ID, &item.VehicleName, &item.CustomerName, &item.CustomerPhone,
			&item.StartTime, &item.DurationHours, &item.Status,
			&item.PickupLocation, &item.DeliveryLocation, &note,
			&startedAt, &completedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan driver job row", err)
		}
		item.EndTime = item.StartTime.Add(hoursToDuration(item.DurationHours))
		if note != "" {
			item.Note = &note
		}
		item.StartedAt = pgconv.TimePtrFromPgtype(startedAt)
		item.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate driver jobs", err)
	}

	return result, nil
}

const blockedSlotsSQL = `
SELECT start_time, duration_hours
FROM reservations
WHERE vehicle_id = $1
  AND status NOT IN ('completed', 'cancelled')
  AND tstzrange(start_time, start_time + make_interval(secs => duration_hours * 3600), '[)')
      && tstzrange($2, $3, '[)')
ORDER BY start_time`

// BlockedSlots returns the busy intervals of a vehicle overlapping the
// given window. Missing rows mean free, so callers must treat a query
// failure as unavailable rather than free.
func (s *ReservationReadStore) BlockedSlots(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]queries.BlockedSlot, error) {
	rows, err := s.db.Query(ctx, blockedSlotsSQL, vehicleID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blocked slots", err)
	}
	defer rows.Close()

	var result []queries.BlockedSlot
	for rows.Next() {
		var (
			start         time.Time
			durationHours float64
		)
		if err := rows.Scan(&start, &durationHours); err != nil {
			return nil, infra.WrapRepoErr("failed to scan blocked slot", err)
		}
		result = append(result, queries.BlockedSlot{
			Start: start,
			End:   start.Add(hoursToDuration(durationHours)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate blocked slots", err)
	}

	return result, nil
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

func derivePaymentStatus(totalCents, paidCents int64) string {
	payment := reservation.ReconstructPayment(
		reservation.NewMoney(totalCents),
		reservation.NewMoney(paidCents),
	)
	return payment.Status().String()
}
