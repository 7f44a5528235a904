package services

import (
	"context"
	"time"

	"rap-battle-service/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProgressStore is a mock implementation of ProgressStore
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressStore) InitializeUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressStore) UpdateUserProgress(ctx context.Context, prog *models.UserProgress) error {
	args := m.Called(ctx, prog)
	return args.Error(0)
}

func (m *MockProgressStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockProgressStore) GetUser(ctx context.Context, userID string) (*models.BattleUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BattleUser), args.Error(1)
}

func (m *MockProgressStore) AddCurrencyTransaction(ctx context.Context, tx *models.CurrencyTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockProgressStore) TopUsersByLevel(ctx context.Context, limit int) ([]models.UserProgress, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserProgress), args.Error(1)
}

func (m *MockProgressStore) RecordBattle(ctx context.Context, battle *models.BattleLog) error {
	args := m.Called(ctx, battle)
	return args.Error(0)
}

func (m *MockProgressStore) GetMilestoneTier(ctx context.Context, level int) (*models.MilestoneTier, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MilestoneTier), args.Error(1)
}

func (m *MockProgressStore) GetXPEvent(ctx context.Context, userID, source, eventID string) (*models.XPEvent, error) {
	args := m.Called(ctx, userID, source, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.XPEvent), args.Error(1)
}

func (m *MockProgressStore) RecordXPEvent(ctx context.Context, event *models.XPEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// InTransaction runs fn against the mock itself; transactional boundaries
// are exercised by the gorm store, not here.
func (m *MockProgressStore) InTransaction(ctx context.Context, fn func(ctx context.Context, store ProgressStore) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockWalletStore is a mock implementation of WalletStore
type MockWalletStore struct {
	mock.Mock
}

func (m *MockWalletStore) GetWalletByType(ctx context.Context, walletType string) (*models.PlatformWallet, error) {
	args := m.Called(ctx, walletType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformWallet), args.Error(1)
}

func (m *MockWalletStore) GetWalletByID(ctx context.Context, walletID string) (*models.PlatformWallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformWallet), args.Error(1)
}

func (m *MockWalletStore) CreateWallet(ctx context.Context, wallet *models.PlatformWallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletStore) ListWallets(ctx context.Context) ([]models.PlatformWallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlatformWallet), args.Error(1)
}

func (m *MockWalletStore) ListActiveWallets(ctx context.Context) ([]models.PlatformWallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlatformWallet), args.Error(1)
}

func (m *MockWalletStore) ApplyTransaction(ctx context.Context, tx *models.WalletTransaction, expectBefore decimal.Decimal) error {
	args := m.Called(ctx, tx, expectBefore)
	return args.Error(0)
}

func (m *MockWalletStore) RecentTransactions(ctx context.Context, limit int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

func (m *MockWalletStore) TransactionsSince(ctx context.Context, since time.Time) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}
