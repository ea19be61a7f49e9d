package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/config"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/usecase/queries"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrVehicleNotFound         = errs.New("vehicle not found")
	ErrVehicleInactive         = errs.New("vehicle inactive")
	ErrReservationNotFound     = errs.New("reservation not found")
	ErrReservationNotOwned     = errs.New("reservation not owned by user")
	ErrSlotConflict            = errs.New("time slot already booked")
	ErrDurationTooLong         = errs.New("duration exceeds the booking limit")
	ErrInvalidTimeSlot         = errs.New("invalid time slot")
	ErrSlotInPast              = errs.New("time slot starts in the past")
	ErrDuplicateBooking        = errs.New("duplicate booking")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyKeyRequired  = errs.New("idempotency key required")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const createBookingEndpoint = "POST /bookings"

type CreateBookingRequest struct {
	VehicleID        uuid.UUID
	StartTime        time.Time
	DurationHours    float64
	PickupLocation   string
	DeliveryLocation string
	Note             string
}

type CreateBookingResult struct {
	Reservation *queries.ReservationView
	IsReplayed  bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest, customerID uuid.UUID, idempotencyKey uuid.UUID) (*CreateBookingResult, error)
	// CancelOwn lets a customer cancel one of their own active reservations.
	CancelOwn(ctx context.Context, reservationID, customerID uuid.UUID) error
}

type bookingCommandsImpl struct {
	uow                shared.UnitOfWork
	reservationFactory *reservation.Factory
	reservationQueries queries.ReservationQueries
	cfg                config.BookingConfig
	clock              clock.Clock
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	reservationFactory *reservation.Factory,
	reservationQueries queries.ReservationQueries,
	cfg config.BookingConfig,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:                uow,
		reservationFactory: reservationFactory,
		reservationQueries: reservationQueries,
		cfg:                cfg,
		clock:              clk,
	}
}

func (b *bookingCommandsImpl) CreateBooking(
	ctx context.Context,
	req CreateBookingRequest,
	customerID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CreateBookingResult, error) {
	requestHash := calculateRequestHash(req)
	expiresAt := b.clock.Now().Add(24 * time.Hour)

	replayed, err := b.handleIdempotency(ctx, idempotencyKey, customerID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateBookingResult{Reservation: replayed, IsReplayed: true}, nil
	}

	view, err := b.createNewBooking(ctx, req, customerID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{Reservation: view, IsReplayed: false}, nil
}

func (b *bookingCommandsImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, customerID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.ReservationView, error) {
	err := b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().TryInsert(ctx, tx.DB(), idempotencyKey, customerID, createBookingEndpoint, requestHash, expiresAt)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	existing, err := b.uow.CommandReads().IdempotencyByKey(ctx, idempotencyKey, customerID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	switch {
	case existing.IsCompleted():
		if existing.ReservationID == nil {
			return nil, errs.New("completed booking request missing reservation id")
		}
		return b.reservationQueries.GetByIDSystem(ctx, *existing.ReservationID)

	case existing.IsProcessing():
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateBooking
		}
		// This request just claimed the key, or a concurrent identical
		// request still runs. The record carries no owner marker, so
		// proceed; the losing request fails on the slot conflict instead.
		return nil, nil

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

// createNewBooking re-validates availability inside the transaction while
// holding the vehicle row lock. The serialization point is the lock; the
// exclusion constraint on reservations is the backstop.
func (b *bookingCommandsImpl) createNewBooking(
	ctx context.Context,
	req CreateBookingRequest,
	customerID, idempotencyKey uuid.UUID,
) (*queries.ReservationView, error) {
	if req.DurationHours > float64(b.cfg.MaxDurationHours) {
		return nil, ErrDurationTooLong
	}

	slot, err := reservation.NewTimeSlot(req.StartTime, req.DurationHours)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidTimeSlot)
	}

	var reservationID uuid.UUID
	err = b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		vehicleEntity, txErr := tx.Reads().VehicleByIDForUpdate(ctx, req.VehicleID)
		if txErr != nil {
			if infra.IsKind(txErr, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}
		if !vehicleEntity.IsActive() {
			return ErrVehicleInactive
		}

		customer, txErr := tx.Reads().UserByID(ctx, customerID)
		if txErr != nil {
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}

		booked, txErr := tx.Reads().ActiveSlotsByVehicle(ctx, req.VehicleID)
		if txErr != nil {
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}

		if checkErr := reservation.CheckBookable(b.clock.Now(), slot, booked); checkErr != nil {
			switch {
			case errors.Is(checkErr, reservation.ErrStartInPast):
				return ErrSlotInPast
			case errors.Is(checkErr, reservation.ErrSlotConflict):
				return ErrSlotConflict
			default:
				return errs.Mark(checkErr, ErrDomainValidation)
			}
		}

		entity, txErr := b.reservationFactory.NewBooking(
			reservation.VehicleSpec{
				ID:                vehicleEntity.ID(),
				Name:              vehicleEntity.Name(),
				PricePerHourCents: vehicleEntity.PricePerHourCents(),
			},
			reservation.CustomerSnapshot{
				UserID: customer.ID(),
				Name:   customer.Name().Value(),
				Phone:  customer.Phone().Value(),
			},
			slot,
			req.PickupLocation,
			req.DeliveryLocation,
			reservation.NewNote(req.Note),
		)
		if txErr != nil {
			return errs.Mark(txErr, ErrDomainValidation)
		}

		id, txErr := tx.Reservations().Create(ctx, tx.DB(), entity)
		if txErr != nil {
			if infra.IsKind(txErr, infra.KindConflict) {
				return ErrSlotConflict
			}
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}
		reservationID = id

		if txErr = createBookingNotification(ctx, tx, id, customerID, b.clock.Now()); txErr != nil {
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}

		resultHash := calculateIDHash(id)
		if txErr = tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, customerID, resultHash, id); txErr != nil {
			return errs.Mark(txErr, ErrDatabaseOperationFailed)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read-after-write: pick up the joined view from the read store
	view, err := b.reservationQueries.GetByIDSystem(ctx, reservationID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return view, nil
}

func (b *bookingCommandsImpl) CancelOwn(ctx context.Context, reservationID, customerID uuid.UUID) error {
	return b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Reads().ReservationByIDForUpdate(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if entity.Customer().UserID != customerID {
			// Indistinguishable from a missing reservation on purpose.
			return ErrReservationNotFound
		}

		if err := entity.Cancel(b.clock.Now()); err != nil {
			return err
		}

		if err := tx.Reservations().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		payload, err := json.Marshal(map[string]any{
			"reservation_id": reservationID,
			"type":           "booking_cancelled",
		})
		if err != nil {
			return err
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "booking_cancelled", payload, b.clock.Now())
	})
}

func createBookingNotification(ctx context.Context, tx shared.Tx, reservationID, customerID uuid.UUID, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": reservationID,
		"customer_id":    customerID,
		"type":           "booking_created",
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "booking_created", payload, now)
}

func calculateRequestHash(req CreateBookingRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
