// models/platform_wallet.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Well-known platform wallet types. The set is extensible: new types only
// need a row, not code.
const (
	WalletTypeRewardsPool   = "rewards_pool"
	WalletTypeCompanyProfit = "company_profit"
	WalletTypeRevenueShare  = "revenue_share"
)

// PlatformWallet is an internally-tracked pool of USDC value (not a per-user
// wallet). `Balance` is a cached projection of the transaction ledger and is
// only ever written through a paired WalletTransaction.
type PlatformWallet struct {
	ID            string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletType    string           `gorm:"uniqueIndex;not null" json:"wallet_type"`
	WalletAddress string           `gorm:"type:varchar(128);not null" json:"wallet_address"` // external chain address
	Balance       decimal.Decimal  `gorm:"type:numeric(20,6);not null;default:0" json:"balance"`
	MinBalance    *decimal.Decimal `gorm:"type:numeric(20,6)" json:"min_balance,omitempty"` // alert threshold, nil = no alerting
	IsActive      bool             `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletTxType represents the type of balance change
type WalletTxType string

const (
	WalletTxDeposit        WalletTxType = "deposit"
	WalletTxWithdrawal     WalletTxType = "withdrawal"
	WalletTxRewardPayout   WalletTxType = "reward_payout"
	WalletTxProfitTransfer WalletTxType = "profit_transfer"
)

// WalletTransaction is an append-only ledger entry. Rows are never mutated or
// deleted; replaying all rows for a wallet from zero reproduces its balance.
type WalletTransaction struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	WalletID      string          `gorm:"type:uuid;index;not null" json:"wallet_id"`
	TxType        WalletTxType    `gorm:"type:varchar(32);not null" json:"tx_type"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"amount"` // signed: negative = debit
	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"balance_after"`
	TxHash        string          `gorm:"type:varchar(128)" json:"tx_hash,omitempty"` // external chain reference
	UserID        string          `gorm:"index" json:"user_id,omitempty"`
	Description   string          `gorm:"type:text" json:"description"`
	MetadataJSON  string          `gorm:"type:jsonb;default:'{}'" json:"metadata"` // cross-reference ids for audit
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// BalanceAlert is emitted by the balance check when a wallet drops below its
// configured minimum.
type BalanceAlert struct {
	WalletType string          `json:"wallet_type"`
	Balance    decimal.Decimal `json:"balance"`
	MinBalance decimal.Decimal `json:"min_balance"`
}

// WalletStats is the read-only admin aggregate.
type WalletStats struct {
	Wallets            []PlatformWallet    `json:"wallets"`
	TotalBalance       decimal.Decimal     `json:"total_balance"`
	RecentTransactions []WalletTransaction `json:"recent_transactions"`
	WalletCount        int                 `json:"wallet_count"`
}
