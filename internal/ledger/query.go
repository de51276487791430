package ledger

import (
	"context"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/cache"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

// QueryService is the read side: account and transfer lookups with
// filters and pagination. It never mutates anything. Account reads go
// through an optional cache; pass nil to read straight from the store.
type QueryService struct {
	store interfaces.LedgerStore
	views *cache.ViewCache[models.Account]
}

func NewQueryService(store interfaces.LedgerStore, views *cache.ViewCache[models.Account]) *QueryService {
	return &QueryService{store: store, views: views}
}

func accountKey(id string) string { return "account:" + id }

// GetAccount returns the account by id, cache-aside.
func (s *QueryService) GetAccount(ctx context.Context, id string) (models.Account, error) {
	if s.views != nil {
		if cached, ok := s.views.Get(ctx, accountKey(id)); ok {
			return *cached, nil
		}
	}
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	if s.views != nil {
		s.views.Set(ctx, accountKey(id), &acct)
	}
	return acct, nil
}

// GetBalance returns just the account's current balance.
func (s *QueryService) GetBalance(ctx context.Context, id string) (int64, error) {
	acct, err := s.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func (s *QueryService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *QueryService) GetTransfer(ctx context.Context, id string) (models.TransferRecord, error) {
	return s.store.GetTransfer(ctx, id)
}

func (s *QueryService) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error) {
	return s.store.ListTransfers(ctx, filter)
}

// InvalidateAccounts drops cached views after a transfer touched the given
// accounts. Cached balances may otherwise serve stale reads until expiry.
func (s *QueryService) InvalidateAccounts(ctx context.Context, ids ...string) {
	if s.views == nil {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(id)
	}
	s.views.Delete(ctx, keys...)
}
