package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// AuthService guards the API: the dashboard exchanges its configured API
// key for a short-lived JWT and presents it as a bearer token.
type AuthService struct {
	cfg    config.AuthConfig
	logger *logger.Logger
}

// Claims are the JWT claims issued for the dashboard session
type Claims struct {
	jwt.RegisteredClaims
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig, logger *logger.Logger) *AuthService {
	return &AuthService{cfg: cfg, logger: logger}
}

// Token verifies the API key against its bcrypt hash and issues a JWT
func (s *AuthService) Token(req ports.TokenRequest) (*ports.TokenResponse, error) {
	if s.cfg.APIKeyHash == "" {
		return nil, fmt.Errorf("api key auth is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.APIKeyHash), []byte(req.APIKey)); err != nil {
		s.logger.Warnw("API key rejected")
		return nil, entities.ErrUnauthorized
	}

	expiresAt := time.Now().Add(s.cfg.ExpiresIn)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   "dashboard",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.TokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies a bearer token
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, entities.ErrUnauthorized
	}
	return claims, nil
}
