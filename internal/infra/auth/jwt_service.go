// Package auth verifies the session tokens issued by the identity backend.
package auth

import (
	"time"

	"safeguard/config"
	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every rejected token; callers must not learn why.
var ErrInvalidToken = errors.New("invalid or expired token")

// sessionClaims is the token payload. The subject is the user id.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 session tokens.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTService is the constructor for JWTService.
func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg.Auth == nil || cfg.Auth.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &JWTService{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		now:    time.Now,
	}, nil
}

// NewTokenVerifier exposes the service as the verifier port.
func NewTokenVerifier(s *JWTService) service.TokenVerifier {
	return s
}

// Issue signs a token for identity. Used by development tooling and tests.
func (s *JWTService) Issue(identity entity.Identity, ttl time.Duration) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)

	return signed, errors.Wrap(err, "sign token")
}

// Verify validates tokenString and returns the caller's identity.
func (s *JWTService) Verify(tokenString string) (*entity.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &entity.Identity{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
