package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/storage/memory"
)

var testSecret = []byte("test-secret")

func newTestService() (*Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(store, testSecret, time.Hour), store
}

func validParams() RegisterParams {
	return RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter2",
		Color:    "#ff6600",
		Balance:  1000,
	}
}

func TestRegister(t *testing.T) {
	svc, store := newTestService()

	account, err := svc.Register(context.Background(), validParams())
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, int64(1000), account.Balance)
	assert.Len(t, account.PasswordSalt, 32, "16 random bytes, hex encoded")
	assert.Len(t, account.PasswordHash, 128, "64-byte PBKDF2 key, hex encoded")
	assert.NotEqual(t, "hunter2", account.PasswordHash)

	stored, err := store.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, stored.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(p *RegisterParams)
	}{
		{"missing name", func(p *RegisterParams) { p.Name = "" }},
		{"missing email", func(p *RegisterParams) { p.Email = "" }},
		{"missing password", func(p *RegisterParams) { p.Password = "" }},
		{"missing color", func(p *RegisterParams) { p.Color = "" }},
		{"negative opening balance", func(p *RegisterParams) { p.Balance = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := svc.Register(context.Background(), params)
			require.ErrorIs(t, err, models.ErrInvalidRequest)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), validParams())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validParams())
	require.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), validParams())
	require.NoError(t, err)

	account, token, err := svc.Authenticate(context.Background(), "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (any, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, registered.ID, claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), validParams())
	require.NoError(t, err)

	_, _, err = svc.Authenticate(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	// unknown email yields the same error as a wrong password
	_, _, err = svc.Authenticate(context.Background(), "nobody@example.com", "hunter2")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestHashPasswordIsDeterministicPerSalt(t *testing.T) {
	h1 := hashPassword("secret", "aabbccdd")
	h2 := hashPassword("secret", "aabbccdd")
	h3 := hashPassword("secret", "11223344")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
