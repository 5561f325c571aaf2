package user

import "context"

type Repo interface {
	Create(ctx context.Context, u *User) error
	// GetActiveByUsername returns ErrNotFound for missing or inactive accounts.
	GetActiveByUsername(ctx context.Context, username string) (*User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, u *User) (bool, error)
	Deactivate(ctx context.Context, id int64) (string, error)
}
