package queries

import (
	"context"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrApplicationNotFound = errs.New("driver application not found")

type DriverApplicationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*DriverApplicationView, error)
	List(ctx context.Context, status string) ([]*DriverApplicationView, error)
}

type DriverApplicationViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DriverApplicationView, error)
	FindAll(ctx context.Context, status string) ([]*DriverApplicationView, error)
}

type driverApplicationQueriesImpl struct {
	repo DriverApplicationViewRepo
}

func NewDriverApplicationQueries(repo DriverApplicationViewRepo) DriverApplicationQueries {
	return &driverApplicationQueriesImpl{repo: repo}
}

func (q *driverApplicationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*DriverApplicationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrApplicationNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *driverApplicationQueriesImpl) List(ctx context.Context, status string) ([]*DriverApplicationView, error) {
	return q.repo.FindAll(ctx, status)
}
