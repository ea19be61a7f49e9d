package queries

import (
	"context"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrVehicleNotFound = errs.New("vehicle not found")

type VehicleQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*VehicleView, error)
	// List returns the public catalog (active only) or, for admins, the
	// full fleet.
	List(ctx context.Context, includeInactive bool) ([]*VehicleView, error)
}

type VehicleViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VehicleView, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*VehicleView, error)
}

type vehicleQueriesImpl struct {
	repo VehicleViewRepo
}

func NewVehicleQueries(repo VehicleViewRepo) VehicleQueries {
	return &vehicleQueriesImpl{repo: repo}
}

func (q *vehicleQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*VehicleView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrVehicleNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *vehicleQueriesImpl) List(ctx context.Context, includeInactive bool) ([]*VehicleView, error) {
	return q.repo.FindAll(ctx, !includeInactive)
}
