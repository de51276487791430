package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/storage/memory"
)

func seedTransfers(t *testing.T) (*memory.Store, models.Account, models.Account, models.Account) {
	t.Helper()
	store := memory.NewStore()
	alice := seedAccount(t, store, "alice", 10000)
	bob := seedAccount(t, store, "bob", 10000)
	carol := seedAccount(t, store, "carol", 10000)
	engine := NewEngine(store)

	// alice→bob on day 1..3, carol→alice on day 4, amounts 100/200/300/400.
	day := func(n int) time.Time {
		return time.Date(2025, 6, n, 10, 0, 0, 0, time.UTC)
	}
	pairs := []struct {
		from, to models.Account
		amount   int64
		date     time.Time
	}{
		{alice, bob, 100, day(1)},
		{alice, bob, 200, day(2)},
		{alice, bob, 300, day(3)},
		{carol, alice, 400, day(4)},
	}
	for _, p := range pairs {
		req := transferRequest(p.from, p.to, p.amount)
		req.OccurredAt = p.date
		_, err := engine.Execute(context.Background(), req)
		require.NoError(t, err)
	}
	return store, alice, bob, carol
}

func TestListTransfersByAccount(t *testing.T) {
	store, alice, bob, carol := seedTransfers(t)
	queries := NewQueryService(store, nil)

	got, err := queries.ListTransfers(context.Background(), models.TransferFilter{AccountID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = queries.ListTransfers(context.Background(), models.TransferFilter{AccountID: carol.ID})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// alice appears on both sides of transfers
	got, err = queries.ListTransfers(context.Background(), models.TransferFilter{AccountID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestListTransfersNewestFirst(t *testing.T) {
	store, _, _, _ := seedTransfers(t)
	queries := NewQueryService(store, nil)

	got, err := queries.ListTransfers(context.Background(), models.TransferFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i-1].OccurredAt.Before(got[i].OccurredAt), "expected descending by date")
	}
	assert.Equal(t, int64(400), got[0].Amount)
}

func TestListTransfersDateRange(t *testing.T) {
	store, _, _, _ := seedTransfers(t)
	queries := NewQueryService(store, nil)

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 3, 23, 59, 59, 0, time.UTC)
	got, err := queries.ListTransfers(context.Background(), models.TransferFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(300), got[0].Amount)
	assert.Equal(t, int64(200), got[1].Amount)
}

func TestListTransfersAmountRange(t *testing.T) {
	store, _, _, _ := seedTransfers(t)
	queries := NewQueryService(store, nil)

	lo, hi := int64(150), int64(350)
	got, err := queries.ListTransfers(context.Background(), models.TransferFilter{AmountFrom: &lo, AmountTo: &hi})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListTransfersPagination(t *testing.T) {
	store := memory.NewStore()
	sender := seedAccount(t, store, "sender", 100000)
	receiver := seedAccount(t, store, "receiver", 0)
	engine := NewEngine(store)

	for i := 0; i < 25; i++ {
		req := transferRequest(sender, receiver, 10)
		req.OccurredAt = time.Date(2025, 6, 1, 0, i, 0, 0, time.UTC)
		_, err := engine.Execute(context.Background(), req)
		require.NoError(t, err)
	}
	queries := NewQueryService(store, nil)

	page1, err := queries.ListTransfers(context.Background(), models.TransferFilter{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page1, models.TransfersPerPage)

	page3, err := queries.ListTransfers(context.Background(), models.TransferFilter{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	page4, err := queries.ListTransfers(context.Background(), models.TransferFilter{Page: 4})
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestGetBalance(t *testing.T) {
	store := memory.NewStore()
	account := seedAccount(t, store, "alice", 750)
	queries := NewQueryService(store, nil)

	balance, err := queries.GetBalance(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)

	_, err = queries.GetBalance(context.Background(), "nope")
	require.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestGetTransfer(t *testing.T) {
	store := memory.NewStore()
	sender := seedAccount(t, store, "sender", 500)
	receiver := seedAccount(t, store, "receiver", 0)
	engine := NewEngine(store)
	queries := NewQueryService(store, nil)

	record, err := engine.Execute(context.Background(), transferRequest(sender, receiver, 100))
	require.NoError(t, err)

	got, err := queries.GetTransfer(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = queries.GetTransfer(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrTransferNotFound)
}
