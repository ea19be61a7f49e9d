package repository

import (
	"context"

	"tandaro-api/internal/domain/driverapp"
	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DriverApplicationRepository struct{}

func NewDriverApplicationRepository() *DriverApplicationRepository {
	return &DriverApplicationRepository{}
}

const createDriverApplicationSQL = `
INSERT INTO driver_applications (name, email, phone, license_number, message, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

func (r *DriverApplicationRepository) Create(ctx context.Context, dbtx db.DBTX, app *driverapp.Application) (uuid.UUID, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createDriverApplicationSQL,
		app.Name().Value(),
		app.Email().Value(),
		app.Phone().Value(),
		app.LicenseNumber(),
		app.Message(),
		app.Status().String(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create driver application", err, infra.ClassifyPgError(err))
	}

	return id, nil
}

const updateDriverApplicationSQL = `
UPDATE driver_applications
SET status = $2, decided_by = $3, decided_at = $4, updated_at = now()
WHERE id = $1`

func (r *DriverApplicationRepository) Update(ctx context.Context, dbtx db.DBTX, app *driverapp.Application) error {
	tag, err := dbtx.Exec(ctx, updateDriverApplicationSQL,
		app.ID(),
		app.Status().String(),
		pgconv.UUIDPtrToPgtype(app.DecidedBy()),
		pgconv.TimePtrToPgtype(app.DecidedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update driver application", err, infra.ClassifyPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("driver application not found", nil, infra.KindNotFound)
	}

	return nil
}

const deleteDriverApplicationSQL = `DELETE FROM driver_applications WHERE id = $1`

func (r *DriverApplicationRepository) Delete(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error {
	tag, err := dbtx.Exec(ctx, deleteDriverApplicationSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete driver application", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("driver application not found", nil, infra.KindNotFound)
	}

	return nil
}

const findDriverApplicationByIDSQL = `
SELECT id, name, email, phone, license_number, message, status, decided_by, decided_at, created_at, updated_at
FROM driver_applications
WHERE id = $1`

func (r *DriverApplicationRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID, forUpdate bool) (*driverapp.Application, error) {
	query := findDriverApplicationByIDSQL
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		appID         uuid.UUID
		nameStr       string
		emailStr      string
		phoneStr      string
		licenseNumber string
		message       string
		statusStr     string
		decidedBy     pgtype.UUID
		decidedAt     pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&appID, &nameStr, &emailStr, &phoneStr, &licenseNumber, &message,
		&statusStr, &decidedBy, &decidedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("driver application not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find driver application", err)
	}

	name, err := user.NewName(nameStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid name stored for application", err)
	}
	email, err := user.NewEmail(emailStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid email stored for application", err)
	}
	phone, err := user.NewPhone(phoneStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid phone stored for application", err)
	}
	status, err := driverapp.NewStatus(statusStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid status stored for application", err)
	}

	return driverapp.ReconstructApplication(
		appID, name, email, phone, licenseNumber, message, status,
		pgconv.UUIDPtrFromPgtype(decidedBy),
		pgconv.TimePtrFromPgtype(decidedAt),
		createdAt.Time, updatedAt.Time,
	), nil
}
