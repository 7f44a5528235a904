package models

import (
	"time"

	"gorm.io/gorm"
)

// BattleUser is a local snapshot of the user data this service needs.
// Owned by the profile service; populated here on first contact and kept
// read-mostly (the matchmaker reads username + chosen character).
type BattleUser struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username       string  `gorm:"index;not null" json:"username"`
	CharacterID    string  `json:"character_id,omitempty"` // chosen battle character, roster slug
	WalletAddress  *string `gorm:"type:varchar(128)" json:"wallet_address,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
