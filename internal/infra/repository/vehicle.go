package repository

import (
	"context"

	"tandaro-api/internal/domain/vehicle"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type VehicleRepository struct{}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{}
}

const createVehicleSQL = `
INSERT INTO vehicles (name, description, price_per_hour_cents, capacity_note, image_url, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

func (r *VehicleRepository) Create(ctx context.Context, dbtx db.DBTX, v *vehicle.Vehicle) (uuid.UUID, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createVehicleSQL,
		v.Name(),
		v.Description(),
		v.PricePerHourCents(),
		v.CapacityNote(),
		pgconv.StringPtrToPgtype(v.ImageURL()),
		v.IsActive(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create vehicle", err, infra.ClassifyPgError(err))
	}

	return id, nil
}

const updateVehicleSQL = `
UPDATE vehicles
SET name = $2,
    description = $3,
    price_per_hour_cents = $4,
    capacity_note = $5,
    image_url = $6,
    is_active = $7,
    updated_at = now()
WHERE id = $1`

func (r *VehicleRepository) Update(ctx context.Context, dbtx db.DBTX, v *vehicle.Vehicle) error {
	tag, err := dbtx.Exec(ctx, updateVehicleSQL,
		v.ID(),
		v.Name(),
		v.Description(),
		v.PricePerHourCents(),
		v.CapacityNote(),
		pgconv.StringPtrToPgtype(v.ImageURL()),
		v.IsActive(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update vehicle", err, infra.ClassifyPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("vehicle not found", nil, infra.KindNotFound)
	}

	return nil
}

const deleteVehicleSQL = `DELETE FROM vehicles WHERE id = $1`

// Delete fails with FOREIGN_KEY_VIOLATED while reservations reference the
// vehicle; callers deactivate instead in that case.
func (r *VehicleRepository) Delete(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error {
	tag, err := dbtx.Exec(ctx, deleteVehicleSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete vehicle", err, infra.ClassifyPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("vehicle not found", nil, infra.KindNotFound)
	}

	return nil
}

const findVehicleByIDSQL = `
SELECT id, name, description, price_per_hour_cents, capacity_note, image_url, is_active, created_at, updated_at
FROM vehicles
WHERE id = $1`

func (r *VehicleRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID, forUpdate bool) (*vehicle.Vehicle, error) {
	query := findVehicleByIDSQL
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		vehicleID         uuid.UUID
		name              string
		description       string
		pricePerHourCents int64
		capacityNote      string
		imageURL          pgtype.Text
		isActive          bool
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&vehicleID, &name, &description, &pricePerHourCents,
		&capacityNote, &imageURL, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("vehicle not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find vehicle", err)
	}

	return vehicle.ReconstructVehicle(
		vehicleID, name, description, pricePerHourCents, capacityNote,
		pgconv.StringPtrFromPgtype(imageURL), isActive,
		createdAt.Time, updatedAt.Time,
	), nil
}
