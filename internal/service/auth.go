package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/token"
)

var tracer = otel.Tracer("service")

// AdministratorStore is the role lookup the auth service depends on.
type AdministratorStore interface {
	GetByID(ctx context.Context, id string) (domain.Administrator, error)
	GetByUsername(ctx context.Context, username string) (domain.Administrator, error)
}

// SessionStore parks issued session ids so tokens can be revoked before
// they expire.
type SessionStore interface {
	Put(ctx context.Context, sessionID, adminID string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type AuthService struct {
	secret   []byte
	audience string
	ttl      time.Duration
	admins   AdministratorStore
	sessions SessionStore
}

func NewAuthService(secret []byte, audience string, ttl time.Duration, admins AdministratorStore, sessions SessionStore) *AuthService {
	return &AuthService{
		secret:   secret,
		audience: audience,
		ttl:      ttl,
		admins:   admins,
		sessions: sessions,
	}
}

type AuthResult struct {
	AdminID   string
	SessionID string
}

// Login verifies the administrator's password and issues a signed
// session token. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return "", time.Time{}, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		span.RecordError(errors.Wrap(err, "password mismatch"))
		return "", time.Time{}, domain.ErrUnauthorized
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionID, admin.ID, s.ttl); err != nil {
		span.RecordError(err)
		return "", time.Time{}, errors.Wrap(err, "failed to persist session")
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := token.Claims{
		Issuer:         s.audience,
		Subject:        admin.ID,
		Audience:       s.audience,
		SessionID:      sessionID,
		ExpirationTime: strconv.FormatInt(expiresAt.Unix(), 10),
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
	}

	tok, err := token.Create(claims, s.secret)
	if err != nil {
		span.RecordError(err)
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}

	return tok, expiresAt, nil
}

// Authenticate resolves a bearer token to an actor. The session must
// still exist in the store, so revoked tokens fail even before expiry.
func (s *AuthService) Authenticate(ctx context.Context, tok string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	claims, err := token.Validate(tok, s.secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "token validation failed"))
		return nil, domain.ErrUnauthorized
	}

	if claims.Audience != s.audience {
		span.RecordError(errors.Errorf("token audience mismatch: expected %s, got %s", s.audience, claims.Audience))
		return nil, domain.ErrUnauthorized
	}

	adminID, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		span.RecordError(err)
		return nil, domain.ErrUnauthorized
	}
	if adminID == "" || adminID != claims.Subject {
		return nil, domain.ErrUnauthorized
	}

	return &AuthResult{AdminID: adminID, SessionID: claims.SessionID}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// RedisSessionStore is the production SessionStore.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return "civicpulse:session:" + sessionID
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID, adminID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), adminID, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
