package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridloal/retail-pos/internal/auth/domain"
	"github.com/ridloal/retail-pos/internal/platform/config"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

const adminRole = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid mobile number or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	VerifyToken(token string) (string, error)
}

type authService struct {
	mobile       string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthService hashes the configured operator password once so the
// plain text is not kept in memory.
func NewAuthService(cfg config.AuthConfig) (AuthService, error) {
	if cfg.AdminMobile == "" || cfg.AdminPassword == "" {
		return nil, errors.New("operator mobile and password must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash operator password: %w", err)
	}
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET_KEY not set, using default insecure key")
		secret = "your-very-secret-key-for-jwt"
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &authService{
		mobile:       cfg.AdminMobile,
		passwordHash: hash,
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	mobile := strings.TrimSpace(req.Mobile)
	// Run bcrypt even for an unknown mobile so both failures cost the same.
	pwErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if subtle.ConstantTimeCompare([]byte(mobile), []byte(s.mobile)) != 1 || pwErr != nil {
		logger.Warn("Login: rejected credentials", map[string]interface{}{"mobile": mobile})
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  mobile,
		"role": adminRole,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		logger.Error("Login: failed to sign token", err, nil)
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &domain.LoginResponse{
		Operator:  domain.Operator{Mobile: mobile, Role: adminRole},
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken returns the operator mobile carried by a valid token.
func (s *authService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
