package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/opencivic/civicpulse/internal/domain"
)

type fakeAdminStore struct {
	admins map[string]domain.Administrator
}

func (f *fakeAdminStore) GetByID(ctx context.Context, id string) (domain.Administrator, error) {
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Administrator{}, domain.NotFoundError{Resource: "administrator"}
}

func (f *fakeAdminStore) GetByUsername(ctx context.Context, username string) (domain.Administrator, error) {
	admin, ok := f.admins[username]
	if !ok {
		return domain.Administrator{}, domain.NotFoundError{Resource: "administrator"}
	}
	return admin, nil
}

type fakeSessionStore struct {
	sessions map[string]string
}

func (f *fakeSessionStore) Put(ctx context.Context, sessionID, adminID string, ttl time.Duration) error {
	f.sessions[sessionID] = adminID
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *fakeSessionStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	admins := &fakeAdminStore{admins: map[string]domain.Administrator{
		"clerk": {
			ID:           "admin-1",
			Username:     "clerk",
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
		},
	}}
	sessions := &fakeSessionStore{sessions: map[string]string{}}

	return NewAuthService([]byte("test-secret"), "civic.example.com", time.Hour, admins, sessions), sessions
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := authFixture(t)

	tok, expiresAt, err := svc.Login(context.Background(), "clerk", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected a token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expected future expiry, got %v", expiresAt)
	}

	result, err := svc.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AdminID != "admin-1" {
		t.Errorf("expected admin-1, got %s", result.AdminID)
	}
	if result.SessionID == "" {
		t.Errorf("expected a session id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, _, err := svc.Login(context.Background(), "clerk", "wrong")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := authFixture(t)

	// Indistinguishable from a wrong password.
	_, _, err := svc.Login(context.Background(), "nobody", "correct-horse")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc, _ := authFixture(t)

	if _, err := svc.Authenticate(context.Background(), "not.a.token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateWrongAudience(t *testing.T) {
	svc, _ := authFixture(t)
	other := NewAuthService([]byte("test-secret"), "other.example.com", time.Hour,
		&fakeAdminStore{admins: map[string]domain.Administrator{}},
		&fakeSessionStore{sessions: map[string]string{}})

	tok, _, err := svc.Login(context.Background(), "clerk", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Authenticate(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign audience, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := authFixture(t)

	tok, _, err := svc.Login(context.Background(), "clerk", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Logout(context.Background(), result.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Errorf("expected session removed")
	}

	// The token is still validly signed but the session is gone.
	if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}
