// Package accounts owns registration and authentication. It is a stateless
// collaborator of the transfer engine: it creates accounts and checks
// credentials, and never mutates a balance after creation.
package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

// PBKDF2 parameters, kept compatible with the records this service has
// always written: SHA-512, 1000 iterations, 64-byte key, 16-byte hex salt.
const (
	pbkdf2Iterations = 1000
	pbkdf2KeyLen     = 64
	saltBytes        = 16
)

// Claims are the JWT claims issued on login.
type Claims struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	store     interfaces.LedgerStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(store interfaces.LedgerStore, jwtSecret []byte, tokenTTL time.Duration) *Service {
	return &Service{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// RegisterParams carries everything needed to open an account. Balance is
// the opening balance in the smallest currency unit; zero is fine.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Color    string
	Balance  int64
}

// Register creates a new account. The email must not be taken already.
func (s *Service) Register(ctx context.Context, params RegisterParams) (models.Account, error) {
	switch {
	case params.Name == "":
		return models.Account{}, fmt.Errorf("name is required: %w", models.ErrInvalidRequest)
	case params.Email == "":
		return models.Account{}, fmt.Errorf("email is required: %w", models.ErrInvalidRequest)
	case params.Password == "":
		return models.Account{}, fmt.Errorf("password is required: %w", models.ErrInvalidRequest)
	case params.Color == "":
		return models.Account{}, fmt.Errorf("color is required: %w", models.ErrInvalidRequest)
	case params.Balance < 0:
		return models.Account{}, fmt.Errorf("opening balance cannot be negative: %w", models.ErrInvalidRequest)
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return models.Account{}, fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Email:        params.Email,
		Balance:      params.Balance,
		Color:        params.Color,
		PasswordSalt: saltHex,
		PasswordHash: hashPassword(params.Password, saltHex),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Authenticate checks the credentials and returns the account plus a signed
// bearer token. Unknown email and wrong password are indistinguishable to
// the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Account, string, error) {
	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return models.Account{}, "", models.ErrInvalidCredentials
	}
	if hashPassword(password, account.PasswordSalt) != account.PasswordHash {
		return models.Account{}, "", models.ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return models.Account{}, "", fmt.Errorf("sign token: %w", err)
	}
	return account, token, nil
}

func (s *Service) issueToken(account models.Account) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func hashPassword(password, saltHex string) string {
	key := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(key)
}
