package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"certifier/pkg/requestcontext"
	"certifier/pkg/secrets"
)

const testLearnerID = "550e8400-e29b-41d4-a716-446655440001"

// MockJWTValidator is a testify mock for JWTValidator
type MockJWTValidator struct {
	mock.Mock
}

func (m *MockJWTValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*JWTClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockHandler records whether it was reached and with which context.
type mockHandler struct {
	called  bool
	context context.Context
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type OptionalAuthSuite struct {
	suite.Suite
	validator   *MockJWTValidator
	nextHandler *mockHandler
	middleware  func(http.Handler) http.Handler
}

func TestOptionalAuthSuite(t *testing.T) {
	suite.Run(t, new(OptionalAuthSuite))
}

func (s *OptionalAuthSuite) SetupTest() {
	s.validator = new(MockJWTValidator)
	s.nextHandler = &mockHandler{}
	s.middleware = OptionalAuth(s.validator, slog.Default())
}

func (s *OptionalAuthSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
}

func (s *OptionalAuthSuite) makeRequest(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/request_certificate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.middleware(s.nextHandler).ServeHTTP(w, req)
	return w
}

func (s *OptionalAuthSuite) TestValidTokenSetsLearner() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{LearnerID: testLearnerID, JTI: "jti-1"}, nil)

	w := s.makeRequest("Bearer valid-token")

	require.True(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), testLearnerID, requestcontext.LearnerID(s.nextHandler.context).String())
}

func (s *OptionalAuthSuite) TestAnonymousRequestPassesThrough() {
	w := s.makeRequest("")

	require.True(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.True(s.T(), requestcontext.LearnerID(s.nextHandler.context).IsNil())
}

func (s *OptionalAuthSuite) TestInvalidTokenRejected() {
	s.validator.On("ValidateToken", "bad-token").Return(nil, errors.New("token expired"))

	w := s.makeRequest("Bearer bad-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(s.T(),
		`{"error":"unauthorized","error_description":"Invalid or expired token"}`,
		w.Body.String(),
	)
}

func (s *OptionalAuthSuite) TestNonBearerSchemeRejected() {
	w := s.makeRequest("Basic dXNlcjpwYXNz")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *OptionalAuthSuite) TestMalformedLearnerClaimRejected() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{LearnerID: "not-a-uuid"}, nil)

	w := s.makeRequest("Bearer valid-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func TestRequireCallbackToken(t *testing.T) {
	hash, err := secrets.Hash("pipeline-secret")
	require.NoError(t, err)

	serve := func(mw func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, *mockHandler) {
		next := &mockHandler{}
		req := httptest.NewRequest(http.MethodPost, "/update_certificate", nil)
		if token != "" {
			req.Header.Set(CallbackTokenHeader, token)
		}
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)
		return w, next
	}

	t.Run("accepts matching token", func(t *testing.T) {
		w, next := serve(RequireCallbackToken(hash, slog.Default()), "pipeline-secret")
		assert.True(t, next.called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		w, next := serve(RequireCallbackToken(hash, slog.Default()), "guess")
		assert.False(t, next.called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		w, next := serve(RequireCallbackToken(hash, slog.Default()), "")
		assert.False(t, next.called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty hash disables the check", func(t *testing.T) {
		w, next := serve(RequireCallbackToken("", slog.Default()), "")
		assert.True(t, next.called)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
