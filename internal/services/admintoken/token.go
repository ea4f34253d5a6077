// Package admintoken issues and verifies the bearer tokens that guard the admin API.
package admintoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/benvon/fake-api/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrDisabled is returned when no signing secret is configured.
var ErrDisabled = errors.New("admin tokens are disabled")

// minSecretLength keeps HS256 keys from being trivially guessable
const minSecretLength = 16

// Manager signs and verifies HS256 admin tokens
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a token manager. An empty secret yields ErrDisabled.
func NewManager(secret, issuer string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrDisabled
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("admin token secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given operator subject.
func (m *Manager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := m.now()
	tok, err := jwt.NewBuilder().
		Issuer(m.issuer).
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(m.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature, expiry and issuer of a token and returns its claims.
func (m *Manager) Verify(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256, m.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}
	if token.Subject() == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	return &models.AdminClaims{
		Sub: token.Subject(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
		Iss: token.Issuer(),
	}, nil
}
