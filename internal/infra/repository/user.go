package repository

import (
	"context"

	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const createUserSQL = `
INSERT INTO users (email, password_hash, name, phone, role, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

func (r *UserRepository) Create(ctx context.Context, dbtx db.DBTX, u *user.User) (uuid.UUID, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createUserSQL,
		u.Email().Value(),
		u.PasswordHash(),
		u.Name().Value(),
		u.Phone().Value(),
		u.Role().String(),
		u.IsActive(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err, infra.ClassifyPgError(err))
	}

	return id, nil
}

const updateLastLoginSQL = `
UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

func (r *UserRepository) UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error {
	if _, err := dbtx.Exec(ctx, updateLastLoginSQL, userID); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

const updateUserRoleSQL = `
UPDATE users SET role = $2, updated_at = now() WHERE id = $1`

// UpdateRole promotes or demotes a user; approval of a driver application
// goes through here.
func (r *UserRepository) UpdateRole(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, role user.Role) error {
	tag, err := dbtx.Exec(ctx, updateUserRoleSQL, userID, role.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update user role", err, infra.ClassifyPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}

	return nil
}

const findUserByIDSQL = `
SELECT id, email, password_hash, name, phone, role, last_login, is_active, created_at, updated_at
FROM users
WHERE id = $1`

func (r *UserRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*user.User, error) {
	var (
		userID       uuid.UUID
		email        string
		passwordHash string
		name         string
		phone        string
		role         string
		lastLogin    pgtype.Timestamptz
		isActive     bool
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, findUserByIDSQL, id).Scan(
		&userID, &email, &passwordHash, &name, &phone, &role,
		&lastLogin, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	return reconstructUser(userID, email, passwordHash, name, phone, role, lastLogin, isActive, createdAt, updatedAt)
}

// Stored rows predate the current validation rules only in test fixtures,
// so a failed value object construction is treated as data corruption.
func reconstructUser(
	id uuid.UUID,
	emailStr, passwordHash, nameStr, phoneStr, roleStr string,
	lastLogin pgtype.Timestamptz,
	isActive bool,
	createdAt, updatedAt pgtype.Timestamptz,
) (*user.User, error) {
	email, err := user.NewEmail(emailStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid email stored for user", err)
	}
	name, err := user.NewName(nameStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid name stored for user", err)
	}
	phone, err := user.NewPhone(phoneStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid phone stored for user", err)
	}
	role, err := user.NewRole(roleStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid role stored for user", err)
	}

	return user.ReconstructUser(
		id, email, passwordHash, name, phone, role,
		pgconv.TimePtrFromPgtype(lastLogin), isActive,
		createdAt.Time, updatedAt.Time,
	), nil
}
