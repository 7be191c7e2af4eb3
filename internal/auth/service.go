package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/service/internal/config"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned when the email or password is wrong.
// A single error covers both cases so login responses do not reveal which
// accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service contains the business logic for admin authentication.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService creates a new auth Service.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Login validates the credentials and returns a signed JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(admin.ID, admin.Email)
}

// Seed ensures the configured admin account exists. Called once at startup;
// a no-op when the account is already present.
func (s *Service) Seed(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := s.repo.Create(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	log.Printf("auth: seeded admin account %s", email)
	return nil
}

// issueToken creates a signed JWT for the admin.
func (s *Service) issueToken(adminID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   adminID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
