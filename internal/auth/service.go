package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
)

// ErrInvalidCredentials is returned for a bad email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountStore is the account access auth needs.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) error
}

type Service interface {
	Register(ctx context.Context, email, password, name, photoURL string, role models.Role) (*models.Account, bool, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (email string, role models.Role, err error)
}

type service struct {
	accounts AccountStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(accounts AccountStore, secret string) *service {
	return &service{accounts: accounts, secret: []byte(secret), tokenTTL: 24 * time.Hour}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// Register creates the account on first signup and grants the role's starting
// coins. Idempotent on email: an existing account is returned unchanged with
// created=false, matching the "insert email if user doesn't exist" contract.
func (s *service) Register(ctx context.Context, email, password, name, photoURL string, role models.Role) (*models.Account, bool, error) {
	if role != models.RoleBuyer && role != models.RoleWorker {
		return nil, false, fmt.Errorf("invalid signup role %q", role)
	}
	if existing, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	coins := models.SignupCoinsBuyer
	if role == models.RoleWorker {
		coins = models.SignupCoinsWorker
	}
	acc := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         role,
		Coin:         coins,
		PhotoURL:     photoURL,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		// Lost a concurrent signup race on the unique email; the earlier
		// record wins.
		if existing, gerr := s.accounts.GetByEmail(ctx, email); gerr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return acc, true, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(acc.Email, acc.Role)
}

func (s *service) issueToken(email string, role models.Role) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(ctx context.Context, token string) (string, models.Role, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return "", "", errors.New("invalid token")
	}
	return c.Subject, c.Role, nil
}
