package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"targetkit/pkg/requestcontext"
)

const cookieName = "sess"

// MockSessionValidator is a testify mock for SessionValidator
type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) ValidateSession(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// mockHandler is a test handler that captures if it was called and the context
type mockHandler struct {
	called  bool
	context context.Context
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type SessionMiddlewareTestSuite struct {
	suite.Suite
	validator   *MockSessionValidator
	nextHandler *mockHandler
	middleware  func(http.Handler) http.Handler
}

func TestSessionMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(SessionMiddlewareTestSuite))
}

func (s *SessionMiddlewareTestSuite) SetupTest() {
	s.validator = new(MockSessionValidator)
	s.nextHandler = &mockHandler{}
	s.middleware = RequireSession(s.validator, cookieName, PublicPaths("/api/login"), slog.Default())
}

func (s *SessionMiddlewareTestSuite) serve(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.middleware(s.nextHandler).ServeHTTP(rec, req)
	return rec
}

func (s *SessionMiddlewareTestSuite) TestValidSessionSetsUser() {
	s.validator.On("ValidateSession", "tok").Return("operator", nil)

	rec := s.serve("/api/offers/list", &http.Cookie{Name: cookieName, Value: "tok"})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().True(s.nextHandler.called)
	s.Equal("operator", requestcontext.User(s.nextHandler.context))
	s.validator.AssertExpectations(s.T())
}

func (s *SessionMiddlewareTestSuite) TestMissingCookieIsRejected() {
	rec := s.serve("/api/offers/list", nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.JSONEq(`{"error":"Authentication required","error_code":"unauthorized"}`, rec.Body.String())
	s.False(s.nextHandler.called)
	s.validator.AssertNotCalled(s.T(), "ValidateSession", mock.Anything)
}

func (s *SessionMiddlewareTestSuite) TestInvalidSessionIsRejected() {
	s.validator.On("ValidateSession", "bad").Return("", errors.New("invalid session token"))

	rec := s.serve("/api/activities/list", &http.Cookie{Name: cookieName, Value: "bad"})

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.nextHandler.called)
}

func (s *SessionMiddlewareTestSuite) TestPublicAndNonAPIPathsPassThrough() {
	for _, path := range []string{"/api/login", "/health", "/metrics"} {
		s.nextHandler.called = false
		rec := s.serve(path, nil)
		s.Equal(http.StatusOK, rec.Code, path)
		s.True(s.nextHandler.called, path)
	}
	s.validator.AssertNotCalled(s.T(), "ValidateSession", mock.Anything)
}
