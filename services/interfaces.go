// services/interfaces.go
package services

import (
	"context"
	"time"

	"rap-battle-service/models"

	"github.com/shopspring/decimal"
)

// ProgressStore is the persistence collaborator for the XP ledger and the
// matchmaker. Reads on absent users return (nil, nil), never an error:
// first use is not a failure.
type ProgressStore interface {
	// GetUserProgress returns the progress row, or (nil, nil) when the user
	// has never earned XP.
	GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	// InitializeUserProgress creates a fresh level-1 row.
	InitializeUserProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	// UpdateUserProgress persists a mutated progress row.
	UpdateUserProgress(ctx context.Context, prog *models.UserProgress) error
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	// GetUser returns the local user snapshot, or (nil, nil) when unknown.
	GetUser(ctx context.Context, userID string) (*models.BattleUser, error)
	AddCurrencyTransaction(ctx context.Context, tx *models.CurrencyTransaction) error
	TopUsersByLevel(ctx context.Context, limit int) ([]models.UserProgress, error)
	RecordBattle(ctx context.Context, battle *models.BattleLog) error

	// Milestone reward configuration (seeded rows, operator-extensible).
	GetMilestoneTier(ctx context.Context, level int) (*models.MilestoneTier, error)

	// Idempotency records for keyed XP awards, scoped per user: both sides
	// of a shared battle id dedupe independently.
	GetXPEvent(ctx context.Context, userID, source, eventID string) (*models.XPEvent, error)
	RecordXPEvent(ctx context.Context, event *models.XPEvent) error

	// InTransaction runs fn against a store bound to a single database
	// transaction, so an award (XP + milestone + currency row + event
	// record) commits or rolls back as a unit.
	InTransaction(ctx context.Context, fn func(ctx context.Context, store ProgressStore) error) error
}

// WalletStore is the persistence collaborator for the platform wallet
// ledger. ApplyTransaction is the only balance-writing path.
type WalletStore interface {
	// GetWalletByType returns (nil, nil) when no wallet of that type exists.
	GetWalletByType(ctx context.Context, walletType string) (*models.PlatformWallet, error)
	GetWalletByID(ctx context.Context, walletID string) (*models.PlatformWallet, error)
	CreateWallet(ctx context.Context, wallet *models.PlatformWallet) error
	ListWallets(ctx context.Context) ([]models.PlatformWallet, error)
	ListActiveWallets(ctx context.Context) ([]models.PlatformWallet, error)

	// ApplyTransaction atomically inserts the ledger row and advances the
	// wallet's cached balance from expectBefore to tx.BalanceAfter. When the
	// balance no longer equals expectBefore (a concurrent writer won),
	// nothing is written and models.ErrStaleBalance is returned.
	ApplyTransaction(ctx context.Context, tx *models.WalletTransaction, expectBefore decimal.Decimal) error

	RecentTransactions(ctx context.Context, limit int) ([]models.WalletTransaction, error)
	// TransactionsSince feeds the audit export worker.
	TransactionsSince(ctx context.Context, since time.Time) ([]models.WalletTransaction, error)
}
