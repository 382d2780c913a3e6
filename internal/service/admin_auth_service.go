package service

import (
	"context"
	"elsofra/internal/clock"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/repository"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = time.Hour

const tokenIssuer = "elsofra"

type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(token string) (*AdminClaims, error)
	CreateAdmin(ctx context.Context, username, password string) error
}

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string, ttl time.Duration, clk clock.Clock) AdminAuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &adminAuthService{repo: repo, secret: []byte(secret), ttl: ttl, clock: clk}
}

func (s *adminAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	admin, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if admin == nil || !admin.IsActive {
		return "", apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := AdminClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(admin.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and verifies an HS256 token issued by Login.
func (s *adminAuthService) ValidateToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	keyFunc := func(*jwt.Token) (interface{}, error) { return s.secret, nil }
	parsed, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("username and password cannot be empty")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.repo.CreateAdmin(ctx, username, hash)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
