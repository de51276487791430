// Package memory is an in-memory implementation of interfaces.LedgerStore,
// used by tests and as the default store when no database is configured.
//
// A transfer unit of work stages its writes and applies them under the store
// lock only when the transfer function returns nil. Balance updates are
// compare-and-swap: if another transfer committed in between, the stale
// expectation surfaces as models.ErrConflict and nothing is applied, which
// exercises the engine's retry path the same way a database would.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

type Store struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	transfers []models.TransferRecord
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
	}
}

type balanceUpdate struct {
	id       string
	expected int64
	next     int64
}

// transferTx stages writes for a single unit of work. Reads go straight to
// the store; writes are buffered until commit.
type transferTx struct {
	store   *Store
	updates []balanceUpdate
	records []models.TransferRecord
}

func (t *transferTx) GetAccount(ctx context.Context, id string) (models.Account, error) {
	return t.store.GetAccount(ctx, id)
}

func (t *transferTx) UpdateBalance(ctx context.Context, id string, expected, next int64) error {
	t.updates = append(t.updates, balanceUpdate{id: id, expected: expected, next: next})
	return nil
}

func (t *transferTx) AppendRecord(ctx context.Context, record models.TransferRecord) error {
	t.records = append(t.records, record)
	return nil
}

// Transfer runs fn against a staging handle and commits atomically. If fn
// returns an error or panics, the staged writes are simply discarded.
func (s *Store) Transfer(ctx context.Context, fn func(tx interfaces.TransferTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &transferTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(ctx, tx)
}

func (s *Store) commit(ctx context.Context, tx *transferTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A cancelled caller gets a full rollback, same as any failure.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Validate every expectation before touching anything, so a conflict
	// on the second account cannot leave the first one mutated.
	for _, u := range tx.updates {
		acct, ok := s.accounts[u.id]
		if !ok {
			return fmt.Errorf("account %s: %w", u.id, models.ErrAccountNotFound)
		}
		if acct.Balance != u.expected {
			return fmt.Errorf("balance of account %s changed concurrently: %w", u.id, models.ErrConflict)
		}
	}

	now := time.Now().UTC()
	for _, u := range tx.updates {
		acct := s.accounts[u.id]
		acct.Balance = u.next
		acct.UpdatedAt = now
		s.accounts[u.id] = acct
	}
	s.transfers = append(s.transfers, tx.records...)
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("email %s: %w", account.Email, models.ErrDuplicateEmail)
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", id, models.ErrAccountNotFound)
	}
	return acct, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range s.accounts {
		if acct.Email == email {
			return acct, nil
		}
	}
	return models.Account{}, fmt.Errorf("email %s: %w", email, models.ErrAccountNotFound)
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		accounts = append(accounts, acct)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.Before(accounts[j].CreatedAt) })
	return accounts, nil
}

func (s *Store) GetTransfer(ctx context.Context, id string) (models.TransferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.transfers {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.TransferRecord{}, fmt.Errorf("transfer %s: %w", id, models.ErrTransferNotFound)
}

func (s *Store) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.TransferRecord
	for _, rec := range s.transfers {
		if filter.AccountID != "" && rec.From.ID != filter.AccountID && rec.To.ID != filter.AccountID {
			continue
		}
		if filter.DateFrom != nil && rec.OccurredAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && rec.OccurredAt.After(*filter.DateTo) {
			continue
		}
		if filter.AmountFrom != nil && rec.Amount < *filter.AmountFrom {
			continue
		}
		if filter.AmountTo != nil && rec.Amount > *filter.AmountTo {
			continue
		}
		matched = append(matched, rec)
	}

	// Newest first, then page.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].OccurredAt.After(matched[j].OccurredAt) })

	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * models.TransfersPerPage
	if start >= len(matched) {
		return []models.TransferRecord{}, nil
	}
	end := start + models.TransfersPerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
