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

type DriverApplicationReadStore struct {
	db db.DBTX
}

func NewDriverApplicationReadStore(dbtx db.DBTX) *DriverApplicationReadStore {
	return &DriverApplicationReadStore{db: dbtx}
}

const driverApplicationColumnsSQL = `
SELECT id, name, email, phone, license_number, message, status, decided_by, decided_at, created_at, updated_at
FROM driver_applications`

func (s *DriverApplicationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.DriverApplicationView, error) {
	view, err := scanDriverApplicationView(s.db.QueryRow(ctx, driverApplicationColumnsSQL+" WHERE id = $1", id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("driver application not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find driver application", err)
	}
	return view, nil
}

// FindAll lists applications, optionally filtered by status.
func (s *DriverApplicationReadStore) FindAll(ctx context.Context, status string) ([]*queries.DriverApplicationView, error) {
	query := driverApplicationColumnsSQL + `
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, status)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list driver applications", err)
	}
	defer rows.Close()

	var result []*queries.DriverApplicationView
	for rows.Next() {
		view, err := scanDriverApplicationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan driver application row", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate driver applications", err)
	}

	return result, nil
}

func scanDriverApplicationView(row rowScanner) (*queries.DriverApplicationView, error) {
	var (
		view      queries.DriverApplicationView
		decidedBy pgtype.UUID
		decidedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.Name, &view.Email, &view.Phone, &view.LicenseNumber,
		&view.Message, &view.Status, &decidedBy, &decidedAt, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	view.DecidedBy = pgconv.UUIDPtrFromPgtype(decidedBy)
	view.DecidedAt = pgconv.TimePtrFromPgtype(decidedAt)
	return &view, nil
}
