package commands

import (
	"context"
	"encoding/json"
	"errors"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errs.New("invalid status transition")
	ErrReservationClosed = errs.New("reservation already closed")
	ErrNotAssignedDriver = errs.New("reservation not assigned to this driver")
	ErrInvalidAmount     = errs.New("invalid payment amount")
)

// CompletionReport carries the proof-of-delivery artifacts a driver attaches
// when finishing a job.
type CompletionReport struct {
	Images       []string
	SignatureURL *string
	Note         string
}

type WorkflowCommands interface {
	// Admin transitions; Cancel also covers the admin side of cancellation.
	Confirm(ctx context.Context, reservationID uuid.UUID) error
	Start(ctx context.Context, reservationID uuid.UUID) error
	Complete(ctx context.Context, reservationID uuid.UUID) error
	Cancel(ctx context.Context, reservationID uuid.UUID) error

	// Driver transitions require the reservation to be assigned to the actor.
	StartByDriver(ctx context.Context, reservationID, driverID uuid.UUID) error
	CompleteByDriver(ctx context.Context, reservationID, driverID uuid.UUID, report CompletionReport) error

	// Payment edits; the payment status is always derived, never set.
	SetAmounts(ctx context.Context, reservationID uuid.UUID, totalCents, paidCents int64) error
	RecordPayment(ctx context.Context, reservationID uuid.UUID, amountCents int64) error
	MarkFullyPaid(ctx context.Context, reservationID uuid.UUID) error
}

type workflowCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewWorkflowCommands(uow shared.UnitOfWork, clk clock.Clock) WorkflowCommands {
	return &workflowCommandsImpl{uow: uow, clock: clk}
}

func (w *workflowCommandsImpl) Confirm(ctx context.Context, reservationID uuid.UUID) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		return r.Confirm(w.clock.Now())
	})
}

func (w *workflowCommandsImpl) Start(ctx context.Context, reservationID uuid.UUID) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		return r.Start(w.clock.Now())
	})
}

func (w *workflowCommandsImpl) Complete(ctx context.Context, reservationID uuid.UUID) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		return r.Complete(w.clock.Now())
	})
}

func (w *workflowCommandsImpl) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := w.load(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		if err := mapDomainErr(entity.Cancel(w.clock.Now())); err != nil {
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
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "booking_cancelled", payload, w.clock.Now())
	})
}

func (w *workflowCommandsImpl) StartByDriver(ctx context.Context, reservationID, driverID uuid.UUID) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		if !r.IsAssignedTo(driverID) {
			return ErrNotAssignedDriver
		}
		return r.Start(w.clock.Now())
	})
}

func (w *workflowCommandsImpl) CompleteByDriver(ctx context.Context, reservationID, driverID uuid.UUID, report CompletionReport) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		if !r.IsAssignedTo(driverID) {
			return ErrNotAssignedDriver
		}
		now := w.clock.Now()
		if err := r.Complete(now); err != nil {
			return err
		}
		r.AttachArtifacts(report.Images, report.SignatureURL, reservation.NewNote(report.Note), now)
		return nil
	})
}

func (w *workflowCommandsImpl) SetAmounts(ctx context.Context, reservationID uuid.UUID, totalCents, paidCents int64) error {
	total, err := reservation.NewNonNegativeMoney(totalCents)
	if err != nil {
		return errs.Mark(err, ErrInvalidAmount)
	}
	paid, err := reservation.NewNonNegativeMoney(paidCents)
	if err != nil {
		return errs.Mark(err, ErrInvalidAmount)
	}

	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		return r.SetAmounts(total, paid, w.clock.Now())
	})
}

func (w *workflowCommandsImpl) RecordPayment(ctx context.Context, reservationID uuid.UUID, amountCents int64) error {
	amount, err := reservation.NewNonNegativeMoney(amountCents)
	if err != nil {
		return errs.Mark(err, ErrInvalidAmount)
	}

	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		return r.AddPayment(amount, w.clock.Now())
	})
}

func (w *workflowCommandsImpl) MarkFullyPaid(ctx context.Context, reservationID uuid.UUID) error {
	return w.mutate(ctx, reservationID, func(r *reservation.Reservation) error {
		r.MarkFullyPaid(w.clock.Now())
		return nil
	})
}

// mutate loads the reservation under a row lock, applies fn, and persists.
func (w *workflowCommandsImpl) mutate(ctx context.Context, reservationID uuid.UUID, fn func(*reservation.Reservation) error) error {
	return w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := w.load(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		if err := mapDomainErr(fn(entity)); err != nil {
			return err
		}

		if err := tx.Reservations().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (w *workflowCommandsImpl) load(ctx context.Context, tx shared.Tx, reservationID uuid.UUID) (*reservation.Reservation, error) {
	entity, err := tx.Reads().ReservationByIDForUpdate(ctx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return entity, nil
}

func mapDomainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, reservation.ErrReservationClosed):
		return ErrReservationClosed
	case errors.Is(err, reservation.ErrInvalidTransition):
		return ErrInvalidTransition
	case errors.Is(err, reservation.ErrNegativeAmount):
		return ErrInvalidAmount
	default:
		return err
	}
}
