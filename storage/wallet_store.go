// storage/wallet_store.go
package storage

import (
	"context"
	"errors"
	"time"

	"rap-battle-service/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormWalletStore implements services.WalletStore over postgres.
type GormWalletStore struct {
	db *gorm.DB
}

func NewGormWalletStore(db *gorm.DB) *GormWalletStore {
	return &GormWalletStore{db: db}
}

func (s *GormWalletStore) GetWalletByType(ctx context.Context, walletType string) (*models.PlatformWallet, error) {
	var wallet models.PlatformWallet
	err := s.db.WithContext(ctx).Where("wallet_type = ?", walletType).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *GormWalletStore) GetWalletByID(ctx context.Context, walletID string) (*models.PlatformWallet, error) {
	var wallet models.PlatformWallet
	err := s.db.WithContext(ctx).Where("id = ?", walletID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *GormWalletStore) CreateWallet(ctx context.Context, wallet *models.PlatformWallet) error {
	return s.db.WithContext(ctx).Create(wallet).Error
}

func (s *GormWalletStore) ListWallets(ctx context.Context) ([]models.PlatformWallet, error) {
	var wallets []models.PlatformWallet
	err := s.db.WithContext(ctx).Order("wallet_type ASC").Find(&wallets).Error
	return wallets, err
}

func (s *GormWalletStore) ListActiveWallets(ctx context.Context) ([]models.PlatformWallet, error) {
	var wallets []models.PlatformWallet
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("wallet_type ASC").Find(&wallets).Error
	return wallets, err
}

// ApplyTransaction inserts the ledger row and advances the cached balance in
// one database transaction. The balance update is conditional on the balance
// still being expectBefore; zero rows affected means a concurrent writer got
// there first and the whole transaction rolls back with ErrStaleBalance.
func (s *GormWalletStore) ApplyTransaction(ctx context.Context, tx *models.WalletTransaction, expectBefore decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(tx).Error; err != nil {
			return err
		}
		res := dbtx.Model(&models.PlatformWallet{}).
			Where("id = ? AND balance = ?", tx.WalletID, expectBefore).
			Update("balance", tx.BalanceAfter)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrStaleBalance
		}
		return nil
	})
}

func (s *GormWalletStore) RecentTransactions(ctx context.Context, limit int) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&txs).Error
	return txs, err
}

func (s *GormWalletStore) TransactionsSince(ctx context.Context, since time.Time) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := s.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}
