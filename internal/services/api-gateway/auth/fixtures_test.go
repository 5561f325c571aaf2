package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/user"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	byName map[string]*user.User
	err    error
}

func newFakeUsers(t *testing.T, users ...*user.User) *fakeUsers {
	t.Helper()
	f := &fakeUsers{byName: map[string]*user.User{}}
	for _, u := range users {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) Create(context.Context, *user.User) error { return nil }

func (f *fakeUsers) GetActiveByUsername(_ context.Context, username string) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[username]
	if !ok || !u.IsActive {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Exists(context.Context, string, string) (bool, error) { return false, nil }
func (f *fakeUsers) Update(context.Context, *user.User) (bool, error)     { return true, nil }
func (f *fakeUsers) Deactivate(context.Context, int64) (string, error)    { return "", nil }

type memSessions struct {
	mu     sync.Mutex
	m      map[string]string
	ttls   map[string]time.Duration
	puts   int
	putErr error
	getErr error
}

func newMemSessions() *memSessions {
	return &memSessions{m: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memSessions) Put(_ context.Context, username, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.m[username] = token
	s.ttls[username] = ttl
	return nil
}

func (s *memSessions) Get(_ context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.m[username], nil
}

func (s *memSessions) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, username)
	return nil
}

func (s *memSessions) Ping(context.Context) error { return nil }

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func alice(t *testing.T) *user.User {
	return &user.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashPassword(t, "correct-pw"),
		RoleID:       domainauth.RoleManager,
		IsActive:     true,
	}
}

func testIssuer(t *testing.T, now func() time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Now:           now,
	})
	require.NoError(t, err)
	return iss
}
