// Package ledger holds the transfer engine: the one place account balances
// are mutated. A transfer debits the sender, credits the receiver and writes
// an immutable record, all inside a single unit of work against the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models/events"
)

// maxAttempts bounds how often a transfer is retried after a storage
// conflict before it is surfaced to the caller.
const maxAttempts = 3

// TransferRequest is a fully-parsed, typed transfer. The HTTP layer is
// responsible for getting loose JSON into this shape; the engine validates
// it again in full before touching the store.
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        int64
	Description   string
	Business      string
	OccurredAt    time.Time
	Items         []models.LineItem
	PaymentMethod models.PaymentMethod
}

// Engine executes transfers. It is stateless and safe for concurrent use;
// isolation between in-flight transfers comes from the store's unit of work,
// not from engine-held locks.
type Engine struct {
	store            interfaces.LedgerStore
	publisher        interfaces.EventPublisher
	strictItemTotals bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher makes the engine emit a transfer.completed event after each
// committed transfer. Publish failures are logged, never returned.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithStrictItemTotals rejects transfers whose amount does not equal the sum
// of unit price times quantity over all line items. The original system
// never enforced this, so it is off by default.
func WithStrictItemTotals() Option {
	return func(e *Engine) { e.strictItemTotals = true }
}

func NewEngine(store interfaces.LedgerStore, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs one transfer. On success the sender has been debited, the
// receiver credited and exactly one PAID record written, all atomically. On
// any error none of those effects are observable. The engine does no
// deduplication: the same logical request submitted twice moves money twice.
func (e *Engine) Execute(ctx context.Context, req TransferRequest) (models.TransferRecord, error) {
	if err := e.validate(req); err != nil {
		return models.TransferRecord{}, err
	}

	var record models.TransferRecord
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		record, err = e.attempt(ctx, req)
		if !errors.Is(err, models.ErrConflict) {
			break
		}
	}
	if errors.Is(err, models.ErrConflict) {
		return models.TransferRecord{}, fmt.Errorf("transfer aborted after %d attempts: %w", maxAttempts, err)
	}
	if err != nil {
		return models.TransferRecord{}, err
	}

	e.publish(ctx, record)
	return record, nil
}

type balanceWrite struct {
	id       string
	expected int64
	next     int64
}

// attempt runs one full validate-and-apply pass inside a unit of work. A
// conflict aborts the whole pass; the caller retries from scratch so the
// balance check always runs against a freshly read balance.
func (e *Engine) attempt(ctx context.Context, req TransferRequest) (models.TransferRecord, error) {
	var record models.TransferRecord
	err := e.store.Transfer(ctx, func(tx interfaces.TransferTx) error {
		from, err := tx.GetAccount(ctx, req.FromAccountID)
		if err != nil {
			return err
		}
		to := from
		if req.ToAccountID != req.FromAccountID {
			if to, err = tx.GetAccount(ctx, req.ToAccountID); err != nil {
				return err
			}
		}

		if from.Balance < req.Amount {
			return fmt.Errorf("account %s holds %d, needs %d: %w",
				from.ID, from.Balance, req.Amount, models.ErrInsufficientBalance)
		}

		if from.ID == to.ID {
			// Self-transfer: net zero, still recorded. A single
			// update keeps the no-op invisible to other readers.
			if err := tx.UpdateBalance(ctx, from.ID, from.Balance, from.Balance); err != nil {
				return err
			}
		} else {
			// Touch rows in a fixed order so two opposite-direction
			// transfers cannot deadlock on row locks.
			debit := balanceWrite{id: from.ID, expected: from.Balance, next: from.Balance - req.Amount}
			credit := balanceWrite{id: to.ID, expected: to.Balance, next: to.Balance + req.Amount}
			first, second := debit, credit
			if second.id < first.id {
				first, second = second, first
			}
			if err := tx.UpdateBalance(ctx, first.id, first.expected, first.next); err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, second.id, second.expected, second.next); err != nil {
				return err
			}
		}

		method := req.PaymentMethod
		if method == "" {
			method = models.PaymentCash
		}

		now := time.Now().UTC()
		record = models.TransferRecord{
			ID:            uuid.New().String(),
			From:          from.Snapshot(),
			To:            to.Snapshot(),
			Amount:        req.Amount,
			Description:   req.Description,
			Business:      req.Business,
			Items:         req.Items,
			PaymentMethod: method,
			Status:        models.TransferPaid,
			OccurredAt:    req.OccurredAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return tx.AppendRecord(ctx, record)
	})
	if err != nil {
		return models.TransferRecord{}, err
	}
	return record, nil
}

// validate applies the input contract in order, first failing check wins.
// It runs before the store is touched, so a rejected request has no side
// effects of any kind.
func (e *Engine) validate(req TransferRequest) error {
	switch {
	case req.FromAccountID == "":
		return fmt.Errorf("from account is required: %w", models.ErrInvalidRequest)
	case req.ToAccountID == "":
		return fmt.Errorf("to account is required: %w", models.ErrInvalidRequest)
	case req.Description == "":
		return fmt.Errorf("description is required: %w", models.ErrInvalidRequest)
	case req.Business == "":
		return fmt.Errorf("business is required: %w", models.ErrInvalidRequest)
	case req.OccurredAt.IsZero():
		return fmt.Errorf("date is required: %w", models.ErrInvalidRequest)
	case len(req.Items) == 0:
		return fmt.Errorf("at least one line item is required: %w", models.ErrInvalidRequest)
	}

	if _, err := uuid.Parse(req.FromAccountID); err != nil {
		return fmt.Errorf("from account id %q is not well-formed: %w", req.FromAccountID, models.ErrInvalidRequest)
	}
	if _, err := uuid.Parse(req.ToAccountID); err != nil {
		return fmt.Errorf("to account id %q is not well-formed: %w", req.ToAccountID, models.ErrInvalidRequest)
	}

	if req.Amount <= 0 {
		return fmt.Errorf("amount must be a positive integer: %w", models.ErrInvalidRequest)
	}

	var itemTotal int64
	for i, item := range req.Items {
		switch {
		case item.Title == "":
			return fmt.Errorf("item %d: title is required: %w", i, models.ErrInvalidRequest)
		case item.Quantity <= 0:
			return fmt.Errorf("item %d: quantity must be positive: %w", i, models.ErrInvalidRequest)
		case item.UnitPrice <= 0:
			return fmt.Errorf("item %d: unit price must be positive: %w", i, models.ErrInvalidRequest)
		}
		itemTotal += item.UnitPrice * item.Quantity
	}
	if e.strictItemTotals && itemTotal != req.Amount {
		return fmt.Errorf("amount %d does not match line item total %d: %w",
			req.Amount, itemTotal, models.ErrInvalidRequest)
	}

	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q: %w", req.PaymentMethod, models.ErrInvalidRequest)
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, record models.TransferRecord) {
	if e.publisher == nil {
		return
	}
	event := events.TransferCompleted{
		TransferID:    record.ID,
		FromAccountID: record.From.ID,
		ToAccountID:   record.To.ID,
		Amount:        record.Amount,
		OccurredAt:    record.OccurredAt,
	}
	if err := e.publisher.Publish(ctx, events.TopicTransferCompleted, event); err != nil {
		slog.Warn("failed to publish transfer.completed event",
			"transfer_id", record.ID, "error", err)
	}
}
