package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"targetkit/internal/platform/metrics"
	"targetkit/internal/platform/tracer"
	"targetkit/internal/ttlcache"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/requestcontext"
)

// Scope requested in the client_credentials exchange.
const TokenScope = "openid,AdobeID,target_sdk,read_organizations,additional_info.projectedProductContext"

const (
	// StaticTokenExpiresIn is reported for a configured static token.
	StaticTokenExpiresIn = 86400

	tokenCacheKey    = "access_token"
	defaultTokenSkew = 60 * time.Second
)

// Token is an access token and its remaining lifetime in seconds.
type Token struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// TokenConfig configures a TokenSource.
type TokenConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Tenant       string
	StaticToken  string
	Timeout      time.Duration
	// Skew is subtracted from expires_in before caching.
	Skew time.Duration
}

// TokenSource exchanges client credentials for an access token and caches it
// until shortly before expiry. Concurrent refreshes share one exchange.
type TokenSource struct {
	cfg     TokenConfig
	http    HTTPDoer
	cache   *ttlcache.Cache[string]
	group   singleflight.Group
	now     func() time.Time
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type TokenOption func(*TokenSource)

func WithTokenHTTPClient(d HTTPDoer) TokenOption {
	return func(s *TokenSource) {
		s.http = d
	}
}

// WithTokenClock overrides time.Now for expiry bookkeeping.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenSource) {
		s.now = now
	}
}

func WithTokenMetrics(m *metrics.Metrics) TokenOption {
	return func(s *TokenSource) {
		s.metrics = m
	}
}

func WithTokenTracer(t tracer.Tracer) TokenOption {
	return func(s *TokenSource) {
		s.tracer = t
	}
}

func WithTokenLogger(l *slog.Logger) TokenOption {
	return func(s *TokenSource) {
		s.logger = l
	}
}

func NewTokenSource(cfg TokenConfig, opts ...TokenOption) *TokenSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = 25 * time.Second
	}
	if cfg.Skew == 0 {
		cfg.Skew = defaultTokenSkew
	}
	s := &TokenSource{
		cfg:    cfg,
		http:   &http.Client{},
		now:    time.Now,
		tracer: tracer.NewNoop(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = ttlcache.New(0, ttlcache.WithClock[string](s.now))
	return s
}

// AccessToken implements TokenProvider.
func (s *TokenSource) AccessToken(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Token returns a valid token, exchanging credentials when the cached one is
// missing or about to expire.
func (s *TokenSource) Token(ctx context.Context) (Token, error) {
	if s.cfg.StaticToken != "" {
		return Token{AccessToken: s.cfg.StaticToken, ExpiresIn: StaticTokenExpiresIn}, nil
	}
	if tok, ok := s.cached(); ok {
		return tok, nil
	}

	// The shared exchange outlives any single caller; exchange bounds it with
	// cfg.Timeout.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(tokenCacheKey, func() (any, error) {
		if tok, ok := s.cached(); ok {
			return tok, nil
		}
		tok, err := s.exchange(shared)
		if err != nil {
			return Token{}, err
		}
		if lifetime := time.Duration(tok.ExpiresIn)*time.Second - s.cfg.Skew; lifetime > 0 {
			s.cache.SetWithExpiry(tokenCacheKey, tok.AccessToken, s.now().Add(lifetime))
		}
		return tok, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Token{}, res.Err
		}
		return res.Val.(Token), nil
	case <-ctx.Done():
		return Token{}, &Error{Category: CategoryTimeout, Operation: OpToken, Message: "Request to the identity service timed out.", Underlying: ctx.Err()}
	}
}

func (s *TokenSource) cached() (Token, bool) {
	access, ok := s.cache.Get(tokenCacheKey)
	if !ok {
		return Token{}, false
	}
	expiresAt, _ := s.cache.ExpiresAt(tokenCacheKey)
	remaining := int64(expiresAt.Sub(s.now())/time.Second) + int64(s.cfg.Skew/time.Second)
	return Token{AccessToken: access, ExpiresIn: remaining}, true
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *TokenSource) exchange(ctx context.Context) (tok Token, err error) {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" || s.cfg.Tenant == "" {
		return Token{}, dErrors.New(dErrors.CodeBadRequest,
			"Set TARGET_ACCESS_TOKEN, or TARGET_CLIENT_ID + TARGET_CLIENT_SECRET + TARGET_TENANT.")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanTokenExchange)
	defer func() {
		span.End(err)
		if s.metrics != nil {
			s.metrics.IncrementTokenExchange(err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("scope", TokenScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, &Error{Category: CategoryInternal, Operation: OpToken, Message: "failed to create request", Underlying: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Token{}, &Error{Category: CategoryTimeout, Operation: OpToken, Message: "Request to the identity service timed out.", Underlying: err}
		}
		return Token{}, &Error{Category: CategoryUnavailable, Operation: OpToken, Message: "Failed to get Access Token", Underlying: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Token{}, &Error{Category: CategoryBadData, Operation: OpToken, Status: resp.StatusCode, Message: "failed to read response", Underlying: err}
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.Contains(mediaType, "json") {
		s.logger.ErrorContext(ctx, "token response not JSON",
			"status", resp.StatusCode,
			"body", excerpt(body, 200),
			"request_id", requestcontext.RequestID(ctx),
		)
		return Token{}, &Error{Category: CategoryBadData, Operation: OpToken, Message: "The identity service returned an unexpected response."}
	}

	var data tokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Token{}, &Error{Category: CategoryBadData, Operation: OpToken, Message: "The identity service returned an unexpected response.", Underlying: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := data.ErrorDescription
		if message == "" {
			message = data.Error
		}
		if message == "" {
			message = "Failed to get Access Token"
		}
		s.logger.ErrorContext(ctx, "token exchange rejected",
			"status", resp.StatusCode,
			"error", data.Error,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Token{}, &Error{Category: CategoryForStatus(resp.StatusCode), Operation: OpToken, Status: resp.StatusCode, Message: message}
	}

	if data.AccessToken == "" {
		return Token{}, &Error{Category: CategoryBadData, Operation: OpToken, Status: resp.StatusCode, Message: "token response carried no access_token"}
	}

	return Token{AccessToken: data.AccessToken, ExpiresIn: data.ExpiresIn}, nil
}
