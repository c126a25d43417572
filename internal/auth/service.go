// Package auth handles the operator's password login and issues the bearer
// tokens that guard every write endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/showcase/service/internal/config"
	"github.com/showcase/service/internal/middleware"
)

const (
	// Subject is the JWT subject of the operator.
	Subject = middleware.OperatorSubject

	tokenTTL    = 7 * 24 * time.Hour
	maxFailures = 5
	lockout     = 15 * time.Minute
)

// ErrInvalidCredentials is returned when the password does not match.
var ErrInvalidCredentials = errors.New("invalid password")

// ErrLocked is returned while logins are locked after repeated failures.
var ErrLocked = errors.New("too many failed logins")

// Session is an issued operator token.
type Session struct {
	Token     string    `json:"token" example:"eyJhbGci..."`
	ExpiresAt time.Time `json:"expiresAt" example:"2026-03-06T14:48:34Z"`
}

// Service contains the business logic for operator authentication.
type Service struct {
	repo   *Repository
	hash   []byte
	secret []byte
	now    func() time.Time
}

// NewService creates a new auth Service. A plain OPERATOR_PASSWORD is hashed
// once here; it is only accepted outside production.
func NewService(repo *Repository, cfg *config.Config) (*Service, error) {
	hash := []byte(cfg.OperatorPasswordHash)
	if len(hash) == 0 {
		if cfg.IsProduction() || cfg.OperatorPassword == "" {
			return nil, errors.New("auth: operator password hash is not configured")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.OperatorPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash operator password: %w", err)
		}
		hash = h
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("auth: OPERATOR_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}

	return &Service{
		repo:   repo,
		hash:   hash,
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
	}, nil
}

// Login checks password and issues a token.
func (s *Service) Login(ctx context.Context, password string) (*Session, error) {
	now := s.now()
	until, err := s.repo.Reserve(ctx, now, maxFailures, lockout)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		if !until.IsZero() {
			zerolog.Ctx(ctx).Warn().Time("until", until).Msg("operator login locked")
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.Reset(ctx); err != nil {
		return nil, err
	}
	return s.issueToken(now)
}

// issueToken creates a signed JWT for the operator.
func (s *Service) issueToken(now time.Time) (*Session, error) {
	exp := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub": Subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp.UTC()}, nil
}
