package queries

import (
	"context"
	"time"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrInvalidCursor       = errs.New("invalid pagination cursor")
	ErrReservationAccess   = errs.New("reservation access denied")
)

const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleAdmin    = "admin"
)

// AdminFilter narrows the admin reservation list. Zero values mean "any".
type AdminFilter struct {
	Status    string
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type ReservationQueries interface {
	// GetByID enforces visibility: customers see their own reservations,
	// drivers the ones assigned to them, admins everything.
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*ReservationView, error)
	// GetByIDSystem bypasses the actor check for internal reads such as
	// idempotent replay.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error)
	ListForAdmin(ctx context.Context, filter AdminFilter) ([]*ReservationListItem, error)
}

type ReservationViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByCustomerFirstPage(ctx context.Context, customerID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindByCustomerKeyset(ctx context.Context, customerID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindForAdmin(ctx context.Context, filter AdminFilter) ([]*ReservationListItem, error)
}

type reservationQueriesImpl struct {
	repo ReservationViewRepo
}

func NewReservationQueries(repo ReservationViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*ReservationView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actorRole {
	case RoleAdmin:
		return view, nil
	case RoleDriver:
		if view.DriverID != nil && *view.DriverID == actorID {
			return view, nil
		}
	default:
		if view.CustomerID == actorID {
			return view, nil
		}
	}

	// Hidden rather than forbidden: the actor must not learn the
	// reservation exists.
	return nil, ErrReservationNotFound
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrReservationNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*ReservationListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.FindByCustomerFirstPage(ctx, customerID, int32(limit))
	} else {
		lastCreatedAt, lastID, decodeErr := DecodeAfterCursor(after.After)
		if decodeErr != nil {
			return nil, nil, errs.Mark(decodeErr, ErrInvalidCursor)
		}
		rows, err = q.repo.FindByCustomerKeyset(ctx, customerID, lastCreatedAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}

	return rows, next, nil
}

func (q *reservationQueriesImpl) ListForAdmin(ctx context.Context, filter AdminFilter) ([]*ReservationListItem, error) {
	return q.repo.FindForAdmin(ctx, filter)
}
