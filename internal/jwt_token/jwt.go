// Package jwttoken issues and validates learner bearer tokens (HS256).
package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/requestcontext"
)

const (
	// DevSigningKey is used when JWT_SIGNING_KEY is unset in dev.
	DevSigningKey   = "dev-secret-key-change-in-production"
	DefaultIssuer   = "certifier"
	DefaultAudience = "certifier-learners"
	DefaultTokenTTL = 15 * time.Minute
)

// LearnerTokenClaims are the claims of a learner access token. The learner
// id travels in user_id, the claim name the learning platform already uses.
type LearnerTokenClaims struct {
	LearnerID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// GenerateLearnerToken mints a token for local testing and cmd/tokengen.
func (s *JWTService) GenerateLearnerToken(ctx context.Context, learnerID id.LearnerID) (string, error) {
	if learnerID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "learner ID required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, LearnerTokenClaims{
		LearnerID: learnerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   learnerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        hex.EncodeToString(b),
		},
	})

	return token.SignedString(s.signingKey)
}

// ValidateToken checks signature, algorithm, expiry, issuer and audience.
func (s *JWTService) ValidateToken(tokenString string) (*LearnerTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &LearnerTokenClaims{}, func(token *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*LearnerTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
