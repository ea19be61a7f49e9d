package readstore

import (
	"context"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"
	"tandaro-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type VehicleReadStore struct {
	db db.DBTX
}

func NewVehicleReadStore(dbtx db.DBTX) *VehicleReadStore {
	return &VehicleReadStore{db: dbtx}
}

const vehicleColumnsSQL = `
SELECT id, name, description, price_per_hour_cents, capacity_note, image_url, is_active, created_at, updated_at
FROM vehicles`

func (s *VehicleReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.VehicleView, error) {
	view, err := scanVehicleView(s.db.QueryRow(ctx, vehicleColumnsSQL+" WHERE id = $1", id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("vehicle not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find vehicle", err)
	}
	return view, nil
}

// FindAll lists vehicles, optionally restricted to active ones for the
// public catalog.
func (s *VehicleReadStore) FindAll(ctx context.Context, activeOnly bool) ([]*queries.VehicleView, error) {
	query := vehicleColumnsSQL
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list vehicles", err)
	}
	defer rows.Close()

	var result []*queries.VehicleView
	for rows.Next() {
		view, err := scanVehicleView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan vehicle row", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate vehicles", err)
	}

	return result, nil
}

func scanVehicleView(row rowScanner) (*queries.VehicleView, error) {
	var (
		view     queries.VehicleView
		imageURL pgtype.Text
	)
	err := row.Scan(
		&view.ID, &view.Name, &view.Description, &view.PricePerHourCents,
		&view.CapacityNote, &imageURL, &view.IsActive, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	view.ImageURL = pgconv.StringPtrFromPgtype(imageURL)
	return &view, nil
}
