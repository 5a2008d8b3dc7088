package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many login attempts, please try again later")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUnknownRealm       = errors.New("unknown session realm")
)

const (
	SessionTTL       = 24 * time.Hour
	MaxLoginAttempts = 5
	LoginWindow      = 15 * time.Minute
)

// Credentials is a configured login. Password holds either a bcrypt hash or
// the plain value.
type Credentials struct {
	Username string
	Password string
}

// SessionStore keeps live sessions and failed login counters.
type SessionStore interface {
	Create(ctx context.Context, realm models.Realm, sessionID, username string, ttl time.Duration) error
	Exists(ctx context.Context, realm models.Realm, sessionID string) (bool, error)
	Revoke(ctx context.Context, realm models.Realm, sessionID string) error
	Failures(ctx context.Context, realm models.Realm, ip string) (int64, error)
	RecordFailure(ctx context.Context, realm models.Realm, ip string, window time.Duration) (int64, error)
	ResetFailures(ctx context.Context, realm models.Realm, ip string) error
}

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	Username string       `json:"username"`
	Realm    models.Realm `json:"realm"`
	jwt.StandardClaims
}

type AuthService struct {
	store       SessionStore
	secret      []byte
	credentials map[models.Realm]Credentials
	now         func() time.Time
}

func NewAuthService(store SessionStore, secret string, credentials map[models.Realm]Credentials) *AuthService {
	return &AuthService{
		store:       store,
		secret:      []byte(secret),
		credentials: credentials,
		now:         time.Now,
	}
}

// CheckPassword compares given against a stored bcrypt hash or plain value.
func CheckPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Login checks the realm's credentials and opens a session. It returns the
// signed token for the session cookie.
func (s *AuthService) Login(ctx context.Context, realm models.Realm, username, password, ip string) (string, time.Time, error) {
	creds, ok := s.credentials[realm]
	if !ok {
		return "", time.Time{}, ErrUnknownRealm
	}

	failures, err := s.store.Failures(ctx, realm, ip)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read login attempts: %w", err)
	}
	if failures >= MaxLoginAttempts {
		return "", time.Time{}, ErrTooManyAttempts
	}

	if creds.Password == "" || strings.TrimSpace(username) != creds.Username || !CheckPassword(creds.Password, password) {
		if _, err := s.store.RecordFailure(ctx, realm, ip, LoginWindow); err != nil {
			return "", time.Time{}, fmt.Errorf("record login attempt: %w", err)
		}
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.store.ResetFailures(ctx, realm, ip); err != nil {
		return "", time.Time{}, fmt.Errorf("reset login attempts: %w", err)
	}

	sessionID := uuid.NewString()
	if err := s.store.Create(ctx, realm, sessionID, creds.Username, SessionTTL); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}

	now := s.now()
	expires := now.Add(SessionTTL)
	claims := &SessionClaims{
		Username: creds.Username,
		Realm:    realm,
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expires, nil
}

func (s *AuthService) parse(realm models.Realm, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Realm != realm || claims.Id == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Authenticate resolves a session cookie to its claims. Revoked or expired
// sessions are rejected.
func (s *AuthService) Authenticate(ctx context.Context, realm models.Realm, token string) (*SessionClaims, error) {
	claims, err := s.parse(realm, token)
	if err != nil {
		return nil, err
	}
	live, err := s.store.Exists(ctx, realm, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("look up session: %w", err)
	}
	if !live {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Logout revokes the session behind token. Unparseable tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, realm models.Realm, token string) error {
	claims, err := s.parse(realm, token)
	if err != nil {
		return nil
	}
	return s.store.Revoke(ctx, realm, claims.Id)
}
