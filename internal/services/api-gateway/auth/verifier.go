package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist so a miss costs
// about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("crmdesk-dummy-password"), bcrypt.DefaultCost)

type BcryptVerifier struct {
	users user.Repo
}

var _ domainauth.CredentialVerifier = (*BcryptVerifier)(nil)

func NewBcryptVerifier(users user.Repo) *BcryptVerifier {
	return &BcryptVerifier{users: users}
}

// Verify returns ErrInvalidCredentials for an unknown, inactive or
// wrong-password user. Any other error is an infrastructure failure.
func (v *BcryptVerifier) Verify(ctx context.Context, username, password string) (*domainauth.ClaimSet, error) {
	u, err := v.users.GetActiveByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, user.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domainauth.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.IsActive {
		return nil, domainauth.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))) != nil {
		return nil, domainauth.ErrInvalidCredentials
	}
	return &domainauth.ClaimSet{UserID: u.ID, Username: u.Username, RoleID: u.RoleID}, nil
}
