package interfaces

import (
	"context"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

// TransferTx is the transactional handle a transfer runs against. Every
// operation is part of the same unit of work: all of them become visible on
// commit, or none of them do.
type TransferTx interface {
	// GetAccount reads an account inside the unit of work. Returns
	// models.ErrAccountNotFound if it does not exist.
	GetAccount(ctx context.Context, id string) (models.Account, error)

	// UpdateBalance sets the account's balance to next, but only if the
	// stored balance still equals expected. A concurrent change surfaces
	// as models.ErrConflict, which aborts the unit of work.
	UpdateBalance(ctx context.Context, id string, expected, next int64) error

	// AppendRecord stages an immutable transfer record for commit.
	AppendRecord(ctx context.Context, record models.TransferRecord) error
}

// LedgerStore is the durable store behind the transfer engine and the read
// side. Implementations must make Transfer atomic: the function runs against
// a transactional handle and its effects commit only when it returns nil.
// An error, a panic, or context cancellation rolls everything back.
type LedgerStore interface {
	Transfer(ctx context.Context, fn func(tx TransferTx) error) error

	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, id string) (models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	GetTransfer(ctx context.Context, id string) (models.TransferRecord, error)
	ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error)
}
