package sysadmin

import (
	"context"
	"fmt"
	"strings"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Usecase struct {
	log      *zap.Logger
	users    user.Repo
	sessions domainauth.SessionStore
	cost     int
}

// New uses bcrypt.DefaultCost when cost is out of range.
func New(log *zap.Logger, users user.Repo, sessions domainauth.SessionStore, cost int) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Usecase{log: log, users: users, sessions: sessions, cost: cost}
}

// Register returns user.ErrExists when the username or email is taken.
// The password is trimmed before hashing, matching the login check.
func (u *Usecase) Register(ctx context.Context, in *user.User, password string) error {
	exists, err := u.users.Exists(ctx, in.Username, in.Email)
	if err != nil {
		return err
	}
	if exists {
		return user.ErrExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), u.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	in.PasswordHash = string(hash)
	if in.Status == "" {
		in.Status = user.StatusOffline
	}
	return u.users.Create(ctx, in)
}

// Update returns user.ErrNotFound when no active row matched.
func (u *Usecase) Update(ctx context.Context, in *user.User) error {
	ok, err := u.users.Update(ctx, in)
	if err != nil {
		return err
	}
	if !ok {
		return user.ErrNotFound
	}
	return nil
}

// Delete deactivates the account and drops its session. A failed session
// delete is logged; the account stays deactivated.
func (u *Usecase) Delete(ctx context.Context, id int64) error {
	username, err := u.users.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, username); err != nil {
		u.log.Warn("drop session of deleted user",
			zap.Int64("user_id", id), zap.String("username", username), zap.Error(err))
	}
	return nil
}
