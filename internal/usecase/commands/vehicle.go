package commands

import (
	"context"

	"tandaro-api/internal/domain/vehicle"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/pkg/patch"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrVehicleInUse = errs.New("vehicle has reservations")

type CreateVehicleRequest struct {
	Name              string
	Description       string
	PricePerHourCents int64
	CapacityNote      string
	ImageURL          *string
}

// UpdateVehicleRequest is a partial update: nil fields keep their value.
type UpdateVehicleRequest struct {
	Name              *string
	Description       *string
	PricePerHourCents *int64
	CapacityNote      *string
	ImageURL          *string
	IsActive          *bool
}

type VehicleCommands interface {
	Create(ctx context.Context, req CreateVehicleRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateVehicleRequest) error
	// Delete removes a vehicle that was never booked; vehicles with
	// reservation history are deactivated instead.
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewVehicleCommands(uow shared.UnitOfWork) VehicleCommands {
	return &vehicleCommandsImpl{uow: uow}
}

func (v *vehicleCommandsImpl) Create(ctx context.Context, req CreateVehicleRequest) (uuid.UUID, error) {
	entity, err := vehicle.NewVehicle(req.Name, req.Description, req.PricePerHourCents, req.CapacityNote, req.ImageURL)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	var createdID uuid.UUID
	err = v.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, createErr := tx.Vehicles().Create(ctx, tx.DB(), entity)
		if createErr != nil {
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		createdID = id
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return createdID, nil
}

func (v *vehicleCommandsImpl) Update(ctx context.Context, id uuid.UUID, req UpdateVehicleRequest) error {
	return v.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reads().VehicleByIDForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		imageURL := current.ImageURL()
		if req.ImageURL != nil {
			imageURL = req.ImageURL
		}

		updated, err := vehicle.NewVehicle(
			patch.Coalesce(req.Name, current.Name()),
			patch.Coalesce(req.Description, current.Description()),
			patch.Coalesce(req.PricePerHourCents, current.PricePerHourCents()),
			patch.Coalesce(req.CapacityNote, current.CapacityNote()),
			imageURL,
		)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		entity := vehicle.ReconstructVehicle(
			current.ID(),
			updated.Name(),
			updated.Description(),
			updated.PricePerHourCents(),
			updated.CapacityNote(),
			updated.ImageURL(),
			patch.Coalesce(req.IsActive, current.IsActive()),
			current.CreatedAt(),
			current.UpdatedAt(),
		)

		if err := tx.Vehicles().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (v *vehicleCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return v.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Vehicles().Delete(ctx, tx.DB(), id)
		if err == nil {
			return nil
		}
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrVehicleNotFound
		}
		if infra.IsKind(err, infra.KindForeignKeyViolated) {
			return ErrVehicleInUse
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	})
}
