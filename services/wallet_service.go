// services/wallet_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"rap-battle-service/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Concurrent writers race on the read-compute-write cycle; the store's
// conditional update detects the loss and the service retries. Policy:
// fail-and-retry, bounded, never lock-and-wait.
const maxBalanceRetries = 5

// TxDetail carries the optional provenance fields of a ledger entry.
type TxDetail struct {
	UserID   string
	TxHash   string
	Metadata map[string]any
}

// TransferOutcome is the structured result of operator-facing transfers.
// Validation failures land here, never as returned errors.
type TransferOutcome struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Amount  decimal.Decimal `json:"amount,omitempty"`
}

// SweepResult reports a profit sweep.
type SweepResult struct {
	Transferred bool            `json:"transferred"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
}

// WalletService maintains the named platform wallets and moves value between
// them. RecordTransaction is the single choke point for balance mutation.
type WalletService struct {
	store WalletStore
	cfg   models.MonetizationConfig
}

func NewWalletService(store WalletStore, cfg models.MonetizationConfig) *WalletService {
	return &WalletService{store: store, cfg: cfg}
}

// RecordTransaction appends a ledger entry and advances the wallet's cached
// balance. Amount is signed; negative debits. A missing wallet id is an
// internal precondition violation and returns an error.
func (s *WalletService) RecordTransaction(ctx context.Context, walletID string, txType models.WalletTxType, amount decimal.Decimal, description string, detail TxDetail) (*models.WalletTransaction, error) {
	metadataJSON := "{}"
	if len(detail.Metadata) > 0 {
		raw, err := json.Marshal(detail.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode transaction metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		wallet, err := s.store.GetWalletByID(ctx, walletID)
		if err != nil {
			return nil, fmt.Errorf("failed to load wallet %s: %w", walletID, err)
		}
		if wallet == nil {
			return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, walletID)
		}

		before := wallet.Balance
		after := before.Add(amount)

		tx := &models.WalletTransaction{
			ID:            uuid.NewString(),
			WalletID:      walletID,
			TxType:        txType,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			TxHash:        detail.TxHash,
			UserID:        detail.UserID,
			Description:   description,
			MetadataJSON:  metadataJSON,
		}

		err = s.store.ApplyTransaction(ctx, tx, before)
		if errors.Is(err, models.ErrStaleBalance) {
			log.Printf("⚠️  Wallet %s: concurrent balance update, retrying (%d/%d)", wallet.WalletType, attempt+1, maxBalanceRetries)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to apply wallet transaction: %w", err)
		}

		log.Printf("💰 Wallet %s: %s %s (balance %s → %s)",
			wallet.WalletType, txType, amount.StringFixed(6), before.StringFixed(6), after.StringFixed(6))
		return tx, nil
	}

	return nil, fmt.Errorf("wallet %s: balance update contention persisted after %d attempts", walletID, maxBalanceRetries)
}

// PayoutReward pays a USDC reward to a user from the rewards pool float.
func (s *WalletService) PayoutReward(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	pool, err := s.store.GetWalletByType(ctx, models.WalletTypeRewardsPool)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards pool: %w", err)
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, models.WalletTypeRewardsPool)
	}
	return s.RecordTransaction(ctx, pool.ID, models.WalletTxRewardPayout, amount.Neg(), description, TxDetail{
		UserID:   userID,
		Metadata: map[string]any{"reward": true},
	})
}

// CheckBalances scans active wallets and reports every one sitting below its
// configured minimum. Pure read; never mutates.
func (s *WalletService) CheckBalances(ctx context.Context) ([]models.BalanceAlert, error) {
	wallets, err := s.store.ListActiveWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	var alerts []models.BalanceAlert
	for _, w := range wallets {
		if w.MinBalance == nil {
			continue
		}
		if w.Balance.LessThan(*w.MinBalance) {
			log.Printf("🚨 Low balance: wallet %s at %s (min %s)",
				w.WalletType, w.Balance.StringFixed(6), w.MinBalance.StringFixed(6))
			alerts = append(alerts, models.BalanceAlert{
				WalletType: w.WalletType,
				Balance:    w.Balance,
				MinBalance: *w.MinBalance,
			})
		}
	}
	return alerts, nil
}

// TransferProfits sweeps everything above threshold from the source wallet
// into the destination, recording two linked profit_transfer rows so the sum
// of all wallet balances is unchanged. At or below threshold it is a no-op.
func (s *WalletService) TransferProfits(ctx context.Context, fromType, toType string, threshold decimal.Decimal) (*SweepResult, error) {
	source, err := s.store.GetWalletByType(ctx, fromType)
	if err != nil {
		return nil, fmt.Errorf("failed to load source wallet: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, fromType)
	}
	dest, err := s.store.GetWalletByType(ctx, toType)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination wallet: %w", err)
	}
	if dest == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, toType)
	}

	if source.Balance.LessThanOrEqual(threshold) {
		return &SweepResult{Transferred: false}, nil
	}
	// The sweep amount is fixed from this read. A deposit landing mid-sweep
	// is not re-swept on the retry; the surplus waits for the next sweep.
	transferAmount := source.Balance.Sub(threshold)

	description := fmt.Sprintf("Profit sweep %s → %s", fromType, toType)
	if _, err := s.RecordTransaction(ctx, source.ID, models.WalletTxProfitTransfer, transferAmount.Neg(), description, TxDetail{
		Metadata: map[string]any{"to_wallet_id": dest.ID},
	}); err != nil {
		return nil, err
	}
	if _, err := s.RecordTransaction(ctx, dest.ID, models.WalletTxProfitTransfer, transferAmount, description, TxDetail{
		Metadata: map[string]any{"from_wallet_id": source.ID},
	}); err != nil {
		return nil, err
	}

	log.Printf("🧹 Profit sweep: moved %s from %s to %s (source now at threshold %s)",
		transferAmount.StringFixed(6), fromType, toType, threshold.StringFixed(6))
	return &SweepResult{Transferred: true, Amount: transferAmount}, nil
}

// SweepProfits runs TransferProfits with the configured defaults
// (rewards_pool → company_profit above the configured threshold).
func (s *WalletService) SweepProfits(ctx context.Context) (*SweepResult, error) {
	return s.TransferProfits(ctx, models.WalletTypeRewardsPool, models.WalletTypeCompanyProfit, s.cfg.ProfitSweepThreshold)
}

// ManualTransfer moves value between wallets on operator request. Validation
// failures come back as {Success:false, Error} with nothing written.
func (s *WalletService) ManualTransfer(ctx context.Context, fromType, toType string, amount decimal.Decimal, description string) (*TransferOutcome, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &TransferOutcome{Success: false, Error: "Transfer amount must be positive"}, nil
	}
	if fromType == toType {
		return &TransferOutcome{Success: false, Error: "Cannot transfer to the same wallet"}, nil
	}

	source, err := s.store.GetWalletByType(ctx, fromType)
	if err != nil {
		return nil, fmt.Errorf("failed to load source wallet: %w", err)
	}
	if source == nil {
		return &TransferOutcome{Success: false, Error: fmt.Sprintf("Wallet %s not found", fromType)}, nil
	}
	dest, err := s.store.GetWalletByType(ctx, toType)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination wallet: %w", err)
	}
	if dest == nil {
		return &TransferOutcome{Success: false, Error: fmt.Sprintf("Wallet %s not found", toType)}, nil
	}
	if source.Balance.LessThan(amount) {
		return &TransferOutcome{Success: false, Error: "Insufficient balance"}, nil
	}

	if _, err := s.RecordTransaction(ctx, source.ID, models.WalletTxWithdrawal, amount.Neg(), description, TxDetail{
		Metadata: map[string]any{"manual": true, "to_wallet_id": dest.ID},
	}); err != nil {
		return nil, err
	}
	if _, err := s.RecordTransaction(ctx, dest.ID, models.WalletTxDeposit, amount, description, TxDetail{
		Metadata: map[string]any{"manual": true, "from_wallet_id": source.ID},
	}); err != nil {
		return nil, err
	}

	return &TransferOutcome{Success: true, Amount: amount}, nil
}

// InitializePlatformWallets bootstraps the three well-known wallets with
// zero balance. Idempotent: existing wallets are left untouched.
func (s *WalletService) InitializePlatformWallets(ctx context.Context) error {
	seeds := []struct {
		walletType string
		address    string
		minBalance *decimal.Decimal
	}{
		{models.WalletTypeRewardsPool, s.cfg.RewardsPoolAddress, &s.cfg.RewardsPoolMinBalance},
		{models.WalletTypeCompanyProfit, s.cfg.CompanyProfitAddress, nil},
		{models.WalletTypeRevenueShare, s.cfg.RevenueShareAddress, nil},
	}

	for _, seed := range seeds {
		existing, err := s.store.GetWalletByType(ctx, seed.walletType)
		if err != nil {
			return fmt.Errorf("failed to check wallet %s: %w", seed.walletType, err)
		}
		if existing != nil {
			continue
		}
		wallet := &models.PlatformWallet{
			ID:            uuid.NewString(),
			WalletType:    seed.walletType,
			WalletAddress: seed.address,
			Balance:       decimal.Zero,
			MinBalance:    seed.minBalance,
			IsActive:      true,
		}
		if err := s.store.CreateWallet(ctx, wallet); err != nil {
			return fmt.Errorf("failed to create wallet %s: %w", seed.walletType, err)
		}
		log.Printf("✅ Platform wallet created: %s (%s)", seed.walletType, seed.address)
	}
	return nil
}

// GetWalletStats is the read-only admin aggregate: all wallets, the balance
// sum, the 10 most recent transactions and a count.
func (s *WalletService) GetWalletStats(ctx context.Context) (*models.WalletStats, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	recent, err := s.store.RecentTransactions(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}
	return &models.WalletStats{
		Wallets:            wallets,
		TotalBalance:       total,
		RecentTransactions: recent,
		WalletCount:        len(wallets),
	}, nil
}
