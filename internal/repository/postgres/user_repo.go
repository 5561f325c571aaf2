package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/crmdesk/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	userColumns = `user_id, first_name, last_name, username, email, password_hash, mobile_phone,
       role_id, status, is_active, last_login_at, created_at, updated_at`

	qUserInsert = `
INSERT INTO users (first_name, last_name, username, email, password_hash, mobile_phone, role_id, status, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING user_id, created_at, updated_at;`

	qUserActiveByUsername = `
SELECT ` + userColumns + `
FROM users
WHERE username = $1 AND is_active = TRUE;`

	qUserExists = `
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2);`

	qUserUpdate = `
UPDATE users
SET first_name   = $2,
    last_name    = $3,
    email        = $4,
    role_id      = $5,
    mobile_phone = $6,
    updated_at   = NOW()
WHERE user_id = $1 AND is_active = TRUE;`

	qUserDeactivate = `
UPDATE users
SET is_active = FALSE, updated_at = NOW()
WHERE user_id = $1 AND is_active = TRUE
RETURNING username;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.execQueryer(ctx).QueryRow(ctx, qUserInsert,
		u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.MobilePhone,
		u.RoleID, string(u.Status), u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(classify(err), ErrConflict) {
			return user.ErrExists
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetActiveByUsername(ctx context.Context, username string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, qUserActiveByUsername, username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qUserExists, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qUserUpdate,
		u.ID, u.FirstName, u.LastName, u.Email, u.RoleID, u.MobilePhone)
	if err != nil {
		if errors.Is(classify(err), ErrConflict) {
			return false, user.ErrExists
		}
		return false, fmt.Errorf("user update: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepo) Deactivate(ctx context.Context, id int64) (string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var username string
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qUserDeactivate, id).Scan(&username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("user deactivate: %w", err)
	}
	return username, nil
}

func scanUser(row pgx.Row, out *user.User) error {
	var status string
	if err := row.Scan(&out.ID, &out.FirstName, &out.LastName, &out.Username, &out.Email,
		&out.PasswordHash, &out.MobilePhone, &out.RoleID, &status, &out.IsActive,
		&out.LastLoginAt, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	out.Status = user.Status(status)
	return nil
}
