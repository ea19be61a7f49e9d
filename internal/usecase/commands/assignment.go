package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrDriverNotFound = errs.New("driver not found")
	ErrNotADriver     = errs.New("user is not a driver")
	ErrNotAssigned    = errs.New("no driver assigned")
)

// AssignmentNotifier pushes a realtime event to the driver after the
// assignment committed. Implementations must not block.
type AssignmentNotifier interface {
	NotifyAssigned(driverID, reservationID uuid.UUID, startTime time.Time)
	NotifyUnassigned(driverID, reservationID uuid.UUID)
}

// AssignResult reports one reservation of a bulk assignment.
type AssignResult struct {
	ReservationID uuid.UUID
	Err           error
}

type BulkAssignResult struct {
	Assigned []uuid.UUID
	Failed   []AssignResult
}

type AssignmentCommands interface {
	Assign(ctx context.Context, reservationID, driverID uuid.UUID) error
	// BulkAssign applies the assignment per reservation: failures do not
	// roll back the reservations that succeeded.
	BulkAssign(ctx context.Context, reservationIDs []uuid.UUID, driverID uuid.UUID) (*BulkAssignResult, error)
	Unassign(ctx context.Context, reservationID uuid.UUID) error
}

type assignmentCommandsImpl struct {
	uow      shared.UnitOfWork
	notifier AssignmentNotifier
	clock    clock.Clock
}

func NewAssignmentCommands(uow shared.UnitOfWork, notifier AssignmentNotifier, clk clock.Clock) AssignmentCommands {
	return &assignmentCommandsImpl{uow: uow, notifier: notifier, clock: clk}
}

func (a *assignmentCommandsImpl) Assign(ctx context.Context, reservationID, driverID uuid.UUID) error {
	var startTime time.Time

	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		driver, err := tx.Reads().UserByID(ctx, driverID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrDriverNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !driver.IsDriver() {
			return ErrNotADriver
		}

		entity, err := tx.Reads().ReservationByIDForUpdate(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := a.clock.Now()
		if err := entity.AssignDriver(driverID, driver.Phone().Value(), now); err != nil {
			if errors.Is(err, reservation.ErrReservationClosed) {
				return ErrReservationClosed
			}
			return err
		}
		startTime = entity.Slot().Start()

		if err := tx.Reservations().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		payload, err := json.Marshal(map[string]any{
			"reservation_id": reservationID,
			"driver_id":      driverID,
			"type":           "job_assigned",
		})
		if err != nil {
			return err
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), "push", "job_assigned", payload, now)
	})
	if err != nil {
		return err
	}

	// Push only after the commit so the driver never sees a job that
	// subsequently rolled back.
	a.notifier.NotifyAssigned(driverID, reservationID, startTime)
	return nil
}

func (a *assignmentCommandsImpl) BulkAssign(ctx context.Context, reservationIDs []uuid.UUID, driverID uuid.UUID) (*BulkAssignResult, error) {
	result := &BulkAssignResult{}

	for _, id := range reservationIDs {
		if err := a.Assign(ctx, id, driverID); err != nil {
			if errors.Is(err, ErrDriverNotFound) || errors.Is(err, ErrNotADriver) {
				// The driver is wrong for every entry, not just this one.
				return nil, err
			}
			slog.Warn("bulk assign entry failed",
				"reservation_id", id,
				"driver_id", driverID,
				"error", err.Error())
			result.Failed = append(result.Failed, AssignResult{ReservationID: id, Err: err})
			continue
		}
		result.Assigned = append(result.Assigned, id)
	}

	return result, nil
}

func (a *assignmentCommandsImpl) Unassign(ctx context.Context, reservationID uuid.UUID) error {
	var driverID uuid.UUID

	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Reads().ReservationByIDForUpdate(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		assignment := entity.Assignment()
		if assignment == nil {
			return ErrNotAssigned
		}
		driverID = assignment.DriverID

		if err := entity.UnassignDriver(a.clock.Now()); err != nil {
			if errors.Is(err, reservation.ErrNotAssigned) {
				return ErrNotAssigned
			}
			return err
		}

		if err := tx.Reservations().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.notifier.NotifyUnassigned(driverID, reservationID)
	return nil
}
