package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
)

// MigrateLedger creates the ledger tables if they do not exist.
func MigrateLedger(ctx context.Context, db *pgxpool.Pool) error {
	if err := ledger.NewPostgresLedger(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}
