// Package postgres implements interfaces.LedgerStore on PostgreSQL.
//
// A transfer unit of work maps onto a single database transaction. Balance
// updates are guarded by a compare-and-swap predicate on the current balance:
// under the default isolation level a concurrent committed debit makes the
// predicate re-evaluate to zero rows, which this store reports as
// models.ErrConflict so the engine can retry with fresh reads.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			balance       BIGINT NOT NULL DEFAULT 0,
			color         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			password_salt TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfers (
			id             TEXT PRIMARY KEY,
			from_id        TEXT NOT NULL,
			from_name      TEXT NOT NULL,
			from_email     TEXT NOT NULL,
			to_id          TEXT NOT NULL,
			to_name        TEXT NOT NULL,
			to_email       TEXT NOT NULL,
			amount         BIGINT NOT NULL,
			description    TEXT NOT NULL,
			business       TEXT NOT NULL,
			items          JSONB NOT NULL,
			payment_method TEXT NOT NULL,
			status         TEXT NOT NULL,
			occurred_at    TIMESTAMPTZ NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_occurred ON transfers(occurred_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

type transferTx struct {
	tx *sql.Tx
}

func (t *transferTx) GetAccount(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(t.tx.QueryRowContext(ctx, selectAccount+` WHERE id = $1`, id), id)
}

func (t *transferTx) UpdateBalance(ctx context.Context, id string, expected, next int64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $3, updated_at = now() WHERE id = $1 AND balance = $2`,
		id, expected, next,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the balance moved under us or the account is gone;
		// both abort the transaction, the engine re-reads on retry.
		return fmt.Errorf("balance of account %s changed concurrently: %w", id, models.ErrConflict)
	}
	return nil
}

func (t *transferTx) AppendRecord(ctx context.Context, record models.TransferRecord) error {
	items, err := json.Marshal(record.Items)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO transfers
			(id, from_id, from_name, from_email, to_id, to_name, to_email,
			 amount, description, business, items, payment_method, status,
			 occurred_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		record.ID,
		record.From.ID, record.From.Name, record.From.Email,
		record.To.ID, record.To.Name, record.To.Email,
		record.Amount, record.Description, record.Business, items,
		record.PaymentMethod, record.Status,
		record.OccurredAt, record.CreatedAt, record.UpdatedAt,
	)
	return err
}

// isSerializationFailure reports whether err is a transient contention abort
// (serialization failure 40001 or deadlock 40P01). Postgres has already
// rolled the transaction back; a fresh attempt may well succeed.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// isUniqueViolation reports whether err is a unique constraint violation
// (23505), independent of the constraint name in the message.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Transfer runs fn inside a database transaction. Commit happens only when
// fn returns nil; any error, panic or cancellation rolls back. Contention
// aborts surface as models.ErrConflict so the caller can retry.
func (s *Store) Transfer(ctx context.Context, fn func(tx interfaces.TransferTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			dbTx.Rollback()
		}
	}()

	if err := fn(&transferTx{tx: dbTx}); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("transaction aborted by contention: %w", models.ErrConflict)
		}
		return err
	}
	if err := dbTx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("commit aborted by contention: %w", models.ErrConflict)
		}
		return err
	}
	committed = true
	return nil
}

const selectAccount = `
	SELECT id, name, email, balance, color, password_hash, password_salt, created_at, updated_at
	FROM accounts`

func scanAccount(row *sql.Row, key string) (models.Account, error) {
	var acct models.Account
	err := row.Scan(
		&acct.ID, &acct.Name, &acct.Email, &acct.Balance, &acct.Color,
		&acct.PasswordHash, &acct.PasswordSalt, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Account{}, fmt.Errorf("account %s: %w", key, models.ErrAccountNotFound)
	}
	if err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, balance, color, password_hash, password_salt, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		account.ID, account.Name, account.Email, account.Balance, account.Color,
		account.PasswordHash, account.PasswordSalt, account.CreatedAt, account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", account.Email, models.ErrDuplicateEmail)
	}
	return err
}

func (s *Store) GetAccount(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, selectAccount+` WHERE id = $1`, id), id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, selectAccount+` WHERE email = $1`, email), email)
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, selectAccount+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acct models.Account
		if err := rows.Scan(
			&acct.ID, &acct.Name, &acct.Email, &acct.Balance, &acct.Color,
			&acct.PasswordHash, &acct.PasswordSalt, &acct.CreatedAt, &acct.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

const selectTransfer = `
	SELECT id, from_id, from_name, from_email, to_id, to_name, to_email,
	       amount, description, business, items, payment_method, status,
	       occurred_at, created_at, updated_at
	FROM transfers`

func (s *Store) GetTransfer(ctx context.Context, id string) (models.TransferRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectTransfer+` WHERE id = $1`, id)
	if err != nil {
		return models.TransferRecord{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.TransferRecord{}, err
		}
		return models.TransferRecord{}, fmt.Errorf("transfer %s: %w", id, models.ErrTransferNotFound)
	}
	return scanTransfer(rows)
}

// ListTransfers builds the WHERE clause from whichever filters are set.
func (s *Store) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error) {
	var where []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.AccountID != "" {
		p := arg(filter.AccountID)
		where = append(where, fmt.Sprintf("(from_id = %s OR to_id = %s)", p, p))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("occurred_at >= %s", arg(*filter.DateFrom)))
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("occurred_at <= %s", arg(*filter.DateTo)))
	}
	if filter.AmountFrom != nil {
		where = append(where, fmt.Sprintf("amount >= %s", arg(*filter.AmountFrom)))
	}
	if filter.AmountTo != nil {
		where = append(where, fmt.Sprintf("amount <= %s", arg(*filter.AmountTo)))
	}

	query := selectTransfer
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT %s OFFSET %s",
		arg(models.TransfersPerPage), arg((page-1)*models.TransfersPerPage))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []models.TransferRecord{}
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, rec)
	}
	return transfers, rows.Err()
}

func scanTransfer(rows *sql.Rows) (models.TransferRecord, error) {
	var rec models.TransferRecord
	var items []byte
	err := rows.Scan(
		&rec.ID,
		&rec.From.ID, &rec.From.Name, &rec.From.Email,
		&rec.To.ID, &rec.To.Name, &rec.To.Email,
		&rec.Amount, &rec.Description, &rec.Business, &items,
		&rec.PaymentMethod, &rec.Status,
		&rec.OccurredAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return models.TransferRecord{}, err
	}
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return models.TransferRecord{}, fmt.Errorf("unmarshal line items: %w", err)
	}
	return rec, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
