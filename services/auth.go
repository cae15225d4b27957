package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CrowderSoup/zenboard/config"
)

const (
	tokenIssuer  = "zenboard"
	tokenSubject = "board"
)

var ErrInvalidPassphrase = errors.New("invalid passphrase")

// AuthService exchanges the board passphrase for signed tokens.
type AuthService struct {
	passphrase []byte
	jwtSecret  []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		passphrase: []byte(cfg.Passphrase),
		jwtSecret:  []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL,
		now:        time.Now,
	}
}

// Enabled reports whether requests need a token at all.
func (s *AuthService) Enabled() bool {
	return len(s.passphrase) > 0
}

// Login checks passphrase and returns a token for the board
func (s *AuthService) Login(passphrase string) (string, error) {
	if !s.Enabled() || subtle.ConstantTimeCompare([]byte(passphrase), s.passphrase) != 1 {
		return "", ErrInvalidPassphrase
	}
	return s.CreateJWT(tokenSubject)
}

// CreateJWT generates a JWT token for subject
func (s *AuthService) CreateJWT(subject string) (string, error) {
	now := s.now()

	// Create token with claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	// Sign the token
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyJWT verifies a JWT token and returns its subject
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims

	// Parse the token
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	// Check if token is valid
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.Subject == "" {
		return "", errors.New("subject claim missing")
	}

	return claims.Subject, nil
}
