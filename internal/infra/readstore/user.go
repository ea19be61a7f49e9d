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

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

const userCredentialsSQL = `
SELECT id, email, password_hash, role, is_active
FROM users
WHERE email = $1`

// FindCredentialsByEmail is used by login only; nothing else reads the hash.
func (s *UserReadStore) FindCredentialsByEmail(ctx context.Context, email string) (*queries.UserCredentialsView, error) {
	var view queries.UserCredentialsView
	err := s.db.QueryRow(ctx, userCredentialsSQL, email).Scan(
		&view.ID, &view.Email, &view.PasswordHash, &view.Role, &view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}

	return &view, nil
}

const authorizedUserSQL = `
SELECT id, email, name, phone, role, is_active, last_login, created_at, updated_at
FROM users
WHERE id = $1`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var (
		view      queries.AuthorizedUserView
		lastLogin pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, authorizedUserSQL, id).Scan(
		&view.ID, &view.Email, &view.Name, &view.Phone, &view.Role,
		&view.IsActive, &lastLogin, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	view.LastLogin = pgconv.TimePtrFromPgtype(lastLogin)
	return &view, nil
}

const driversSQL = `
SELECT id, name, email, phone
FROM users
WHERE role = 'driver' AND is_active
ORDER BY name`

// FindDrivers feeds the admin's assignment picker.
func (s *UserReadStore) FindDrivers(ctx context.Context) ([]*queries.DriverView, error) {
	rows, err := s.db.Query(ctx, driversSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list drivers", err)
	}
	defer rows.Close()

	var result []*queries.DriverView
	for rows.Next() {
		var view queries.DriverView
		if err := rows.Scan(&view.ID, &view.Name, &view.Email, &view.Phone); err != nil {
			return nil, infra.WrapRepoErr("failed to scan driver row", err)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate drivers", err)
	}

	return result, nil
}
