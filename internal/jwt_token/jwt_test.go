package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/requestcontext"
)

type JWTServiceSuite struct {
	suite.Suite
	service   *JWTService
	learnerID id.LearnerID
}

func TestJWTServiceSuite(t *testing.T) {
	suite.Run(t, new(JWTServiceSuite))
}

func (s *JWTServiceSuite) SetupTest() {
	s.service = NewJWTService("test-signing-key", "https://lms.example.com", "certifier", time.Hour)
	s.learnerID = id.NewLearnerID()
}

func (s *JWTServiceSuite) TestRoundTrip() {
	token, err := s.service.GenerateLearnerToken(context.Background(), s.learnerID)
	s.Require().NoError(err)

	claims, err := s.service.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(s.learnerID.String(), claims.LearnerID)
	s.NotEmpty(claims.ID)
}

func (s *JWTServiceSuite) TestAdapterMapsClaims() {
	token, err := s.service.GenerateLearnerToken(context.Background(), s.learnerID)
	s.Require().NoError(err)

	claims, err := NewJWTServiceAdapter(s.service).ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(s.learnerID.String(), claims.LearnerID)
}

func (s *JWTServiceSuite) TestExpiredToken() {
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-2*time.Hour))
	token, err := s.service.GenerateLearnerToken(ctx, s.learnerID)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("token expired", err.Error())
}

func (s *JWTServiceSuite) TestWrongSigningKey() {
	other := NewJWTService("another-key", "https://lms.example.com", "certifier", time.Hour)
	token, err := other.GenerateLearnerToken(context.Background(), s.learnerID)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTServiceSuite) TestWrongAudience() {
	other := NewJWTService("test-signing-key", "https://lms.example.com", "someone-else", time.Hour)
	token, err := other.GenerateLearnerToken(context.Background(), s.learnerID)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Error(err)
}

func (s *JWTServiceSuite) TestRejectsNoneAlgorithm() {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, LearnerTokenClaims{
		LearnerID: s.learnerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "https://lms.example.com",
			Audience:  []string{"certifier"},
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(signed)
	s.Error(err)
}

func TestGenerateRejectsNilLearner(t *testing.T) {
	svc := NewJWTService("k", "iss", "aud", time.Minute)
	_, err := svc.GenerateLearnerToken(context.Background(), id.LearnerID{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
