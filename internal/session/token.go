package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"targetkit/internal/ttlcache"
	dErrors "targetkit/pkg/domain-errors"
)

// Claims is the payload of the session cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 session tokens. Logged-out token
// ids are remembered until the token would have expired anyway.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
	revoked    *ttlcache.Cache[struct{}]
}

type TokenOption func(*TokenService)

func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		signingKey: []byte(secret),
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.revoked = ttlcache.New(ttl, ttlcache.WithClock[struct{}](s.now))
	return s
}

// TTL is the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for user.
func (s *TokenService) Issue(user string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, expiresAt, nil
}

// Validate checks signature, algorithm, expiry and revocation.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token")
	}
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if claims.ID != "" {
		if _, revoked := s.revoked.Get(claims.ID); revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has been logged out")
		}
	}
	return claims, nil
}

// Revoke invalidates a token before its expiry. Invalid tokens are ignored.
func (s *TokenService) Revoke(tokenString string) {
	claims, err := s.Validate(tokenString)
	if err != nil || claims.ID == "" {
		return
	}
	expiresAt := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.SetWithExpiry(claims.ID, struct{}{}, expiresAt)
}
