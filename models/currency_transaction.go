package models

import "time"

// CurrencyTxKind distinguishes grants from spends of the virtual (non-USDC)
// in-game currency.
type CurrencyTxKind string

const (
	CurrencyEarned CurrencyTxKind = "earned"
	CurrencySpent  CurrencyTxKind = "spent"
)

// CurrencyTransaction records a virtual-currency movement for a user.
// Append-only; the shop/balance projection lives in the (external) profile
// service and is out of scope here.
type CurrencyTransaction struct {
	ID             string         `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string         `gorm:"index;not null" json:"external_user_id"`
	Amount         int64          `gorm:"not null" json:"amount"`
	Kind           CurrencyTxKind `gorm:"type:varchar(16);not null" json:"kind"`
	Description    string         `gorm:"type:text" json:"description"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
