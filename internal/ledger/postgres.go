package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

const (
	kindTransfer = "transfer"
	kindIssue    = "issue"
)

// Schema creates the tables used by PostgresLedger.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id   UUID PRIMARY KEY,
    code TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS transactions (
    id         UUID PRIMARY KEY,
    kind       TEXT NOT NULL,
    asset      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS entries (
    id             UUID PRIMARY KEY,
    transaction_id UUID NOT NULL REFERENCES transactions (id),
    account_id     UUID NOT NULL REFERENCES accounts (id),
    asset          TEXT NOT NULL,
    amount         NUMERIC(78, 18) NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_account_asset_idx ON entries (account_id, asset);
`

// PostgresLedger persists ledger entries in PostgreSQL ensuring double-entry balance.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Migrate creates the ledger tables if they do not exist.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

// Balance returns the summed balance for the account in the given asset.
func (l *PostgresLedger) Balance(ctx context.Context, account address.Address, a asset.Asset) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(e.amount), 0)::TEXT
        FROM entries e
        INNER JOIN accounts acc ON acc.id = e.account_id
        WHERE acc.code = $1 AND e.asset = $2`
	var raw string
	if err := l.db.QueryRow(ctx, query, account.String(), a.Code()).Scan(&raw); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// HasActivity reports whether an account row exists for account. Rows are
// only created inside a posting.
func (l *PostgresLedger) HasActivity(ctx context.Context, account address.Address) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE code = $1)`
	var exists bool
	if err := l.db.QueryRow(ctx, query, account.String()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Transfer records a balanced posting between two accounts.
func (l *PostgresLedger) Transfer(ctx context.Context, from, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error) {
	return l.post(ctx, kindTransfer, from, to, a, amount, true)
}

// Issue credits to by debiting the issuance account.
func (l *PostgresLedger) Issue(ctx context.Context, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error) {
	return l.post(ctx, kindIssue, IssuanceAccount, to, a, amount, false)
}

func (l *PostgresLedger) post(ctx context.Context, kind string, from, to address.Address, a asset.Asset, amount decimal.Decimal, checkFunds bool) (TransactionResult, error) {
	if !amount.IsPositive() {
		return TransactionResult{}, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransactionResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	fromAccountID, err := accountIDForCode(ctx, tx, from.String())
	if err != nil {
		return TransactionResult{}, err
	}
	toAccountID, err := accountIDForCode(ctx, tx, to.String())
	if err != nil {
		return TransactionResult{}, err
	}

	if checkFunds {
		fromBalance, err := balanceForAccount(ctx, tx, fromAccountID, a)
		if err != nil {
			return TransactionResult{}, err
		}
		if fromBalance.LessThan(amount) {
			return TransactionResult{}, ErrInsufficientFunds
		}
	}

	txID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, kind, asset) VALUES ($1, $2, $3)`, txID, kind, a.Code()); err != nil {
		return TransactionResult{}, err
	}

	const entryInsert = `INSERT INTO entries (id, transaction_id, account_id, asset, amount) VALUES ($1, $2, $3, $4, $5::NUMERIC)`
	if _, err := tx.Exec(ctx, entryInsert, uuid.New(), txID, fromAccountID, a.Code(), amount.Neg().String()); err != nil {
		return TransactionResult{}, err
	}
	if _, err := tx.Exec(ctx, entryInsert, uuid.New(), txID, toAccountID, a.Code(), amount.String()); err != nil {
		return TransactionResult{}, err
	}

	fromBal, err := balanceForAccount(ctx, tx, fromAccountID, a)
	if err != nil {
		return TransactionResult{}, err
	}
	toBal, err := balanceForAccount(ctx, tx, toAccountID, a)
	if err != nil {
		return TransactionResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransactionResult{}, err
	}

	return TransactionResult{TransactionID: txID.String(), FromBalance: fromBal, ToBalance: toBal}, nil
}

// accountIDForCode returns the account row for code, creating it on first use,
// and locks it for the rest of the transaction.
func accountIDForCode(ctx context.Context, tx pgx.Tx, code string) (uuid.UUID, error) {
	if _, err := tx.Exec(ctx, `INSERT INTO accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code); err != nil {
		return uuid.Nil, err
	}

	const query = `SELECT id FROM accounts WHERE code = $1 FOR UPDATE`
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, code).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("account %s not found", code)
		}
		return uuid.Nil, err
	}
	return id, nil
}

func balanceForAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, a asset.Asset) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0)::TEXT FROM entries WHERE account_id = $1 AND asset = $2`
	var raw string
	if err := tx.QueryRow(ctx, query, accountID, a.Code()).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}
