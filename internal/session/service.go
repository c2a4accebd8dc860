// Package session implements the single-operator login that guards the API.
package session

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"targetkit/internal/platform/config"
	"targetkit/internal/platform/metrics"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/requestcontext"
	"targetkit/pkg/secrets"
)

const (
	msgInvalidCredentials = "Invalid ID or password"
	msgNotConfigured      = "Server: AUTH_USER and AUTH_PASSWORD (or AUTH_PASSWORD_HASH) must be set"
)

// Session is an issued login.
type Session struct {
	User      string
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	auth    config.Auth
	tokens  *TokenService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(auth config.Auth, tokens *TokenService, opts ...Option) *Service {
	s := &Service{
		auth:   auth,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether an operator account is configured.
func (s *Service) Enabled() bool {
	return s.auth.Enabled()
}

// Login checks the operator credentials and issues a session token.
func (s *Service) Login(ctx context.Context, id, password string) (*Session, error) {
	id = strings.TrimSpace(id)
	password = strings.TrimSpace(password)

	if !s.auth.Enabled() || (s.auth.Password == "" && s.auth.PasswordHash == "") {
		s.logger.ErrorContext(ctx, "login attempted without configured operator credentials",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeInternal, msgNotConfigured)
	}

	if !s.checkCredentials(id, password) {
		s.observe(false)
		s.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"remote_addr", requestcontext.ClientIP(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	s.observe(true)
	s.logger.InfoContext(ctx, "operator logged in",
		"user", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Session{User: id, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes token. Unknown or expired tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.tokens.Revoke(token)
	s.logger.InfoContext(ctx, "operator logged out",
		"user", requestcontext.User(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
}

// ValidateSession resolves the operator behind a session token.
func (s *Service) ValidateSession(token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(s.auth.User)) != 1 {
		return "", dErrors.New(dErrors.CodeUnauthorized, "session does not belong to the configured operator")
	}
	return claims.Subject, nil
}

func (s *Service) checkCredentials(id, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(id), []byte(s.auth.User)) == 1
	var passOK bool
	if s.auth.PasswordHash != "" {
		passOK = secrets.Verify(password, s.auth.PasswordHash) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.auth.Password)) == 1
	}
	return userOK && passOK
}

func (s *Service) observe(success bool) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(success)
	}
}
