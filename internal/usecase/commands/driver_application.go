package commands

import (
	"context"
	"encoding/json"
	"errors"

	"tandaro-api/internal/domain/driverapp"
	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/errs"
	"tandaro-api/internal/pkg/password"
	"tandaro-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errs.New("driver application not found")
	ErrApplicationDecided  = errs.New("driver application already decided")
)

type ApplyAsDriverRequest struct {
	Name          string
	Email         string
	Phone         string
	LicenseNumber string
	Message       string
}

type DriverApplicationCommands interface {
	Apply(ctx context.Context, req ApplyAsDriverRequest) (uuid.UUID, error)
	// Approve promotes the applicant's account to the driver role,
	// creating the account first when none exists.
	Approve(ctx context.Context, applicationID, adminID uuid.UUID) error
	Reject(ctx context.Context, applicationID, adminID uuid.UUID) error
	Delete(ctx context.Context, applicationID uuid.UUID) error
}

type driverApplicationCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewDriverApplicationCommands(uow shared.UnitOfWork, clk clock.Clock) DriverApplicationCommands {
	return &driverApplicationCommandsImpl{uow: uow, clock: clk}
}

func (d *driverApplicationCommandsImpl) Apply(ctx context.Context, req ApplyAsDriverRequest) (uuid.UUID, error) {
	name, err := user.NewName(req.Name)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}
	email, err := user.NewEmail(req.Email)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}
	phone, err := user.NewPhone(req.Phone)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	app, err := driverapp.NewApplication(name, email, phone, req.LicenseNumber, req.Message)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	var createdID uuid.UUID
	err = d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, createErr := tx.DriverApplications().Create(ctx, tx.DB(), app)
		if createErr != nil {
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		createdID = id

		payload, payloadErr := json.Marshal(map[string]any{
			"application_id": id,
			"type":           "driver_application_received",
		})
		if payloadErr != nil {
			return payloadErr
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "driver_application_received", payload, d.clock.Now())
	})
	if err != nil {
		return uuid.Nil, err
	}

	return createdID, nil
}

func (d *driverApplicationCommandsImpl) Approve(ctx context.Context, applicationID, adminID uuid.UUID) error {
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		app, err := d.load(ctx, tx, applicationID)
		if err != nil {
			return err
		}

		if err := app.Approve(adminID, d.clock.Now()); err != nil {
			if errors.Is(err, driverapp.ErrAlreadyDecided) {
				return ErrApplicationDecided
			}
			return err
		}

		if err := tx.DriverApplications().Update(ctx, tx.DB(), app); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return d.promoteApplicant(ctx, tx, app)
	})
}

// promoteApplicant turns an approved application into a driver account.
// An existing account keeps its password and just changes role.
func (d *driverApplicationCommandsImpl) promoteApplicant(ctx context.Context, tx shared.Tx, app *driverapp.Application) error {
	// A random password forces a reset flow for accounts we create here.
	generated := uuid.NewString()
	hash, err := password.HashPassword(generated)
	if err != nil {
		return errs.Wrap(err, "failed to hash generated password")
	}

	newDriver := user.NewUser(app.Email(), hash, app.Name(), app.Phone(), user.RoleDriver)
	driverID, err := tx.Users().Create(ctx, tx.DB(), newDriver)
	if err == nil {
		payload, payloadErr := json.Marshal(map[string]any{
			"driver_id": driverID,
			"type":      "driver_account_created",
		})
		if payloadErr != nil {
			return payloadErr
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "driver_account_created", payload, d.clock.Now())
	}

	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Account already exists for this email: promote it instead.
	existingID, err := d.findUserIDByEmail(ctx, tx, app.Email().Value())
	if err != nil {
		return err
	}
	if err := tx.Users().UpdateRole(ctx, tx.DB(), existingID, user.RoleDriver); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (d *driverApplicationCommandsImpl) findUserIDByEmail(ctx context.Context, tx shared.Tx, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.DB().QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return id, nil
}

func (d *driverApplicationCommandsImpl) Reject(ctx context.Context, applicationID, adminID uuid.UUID) error {
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		app, err := d.load(ctx, tx, applicationID)
		if err != nil {
			return err
		}

		if err := app.Reject(adminID, d.clock.Now()); err != nil {
			if errors.Is(err, driverapp.ErrAlreadyDecided) {
				return ErrApplicationDecided
			}
			return err
		}

		if err := tx.DriverApplications().Update(ctx, tx.DB(), app); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (d *driverApplicationCommandsImpl) Delete(ctx context.Context, applicationID uuid.UUID) error {
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.DriverApplications().Delete(ctx, tx.DB(), applicationID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrApplicationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (d *driverApplicationCommandsImpl) load(ctx context.Context, tx shared.Tx, applicationID uuid.UUID) (*driverapp.Application, error) {
	app, err := tx.Reads().ApplicationByIDForUpdate(ctx, applicationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return app, nil
}
