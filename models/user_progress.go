package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress tracks gamified progression for each user (denormalized for performance).
// The XP service is the sole writer; `Level` is always recomputed from `TotalXP`
// through the level curve on every mutation.
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	TotalXP int64 `json:"total_xp" gorm:"default:0"`
	Level   int   `json:"level" gorm:"default:1"`

	// Battle counters
	WinStreak          int   `json:"win_streak" gorm:"default:0"`
	BestWinStreak      int   `json:"best_win_streak" gorm:"default:0"`
	TotalBattlesPlayed int64 `json:"total_battles_played" gorm:"default:0"`
	TotalBattlesWon    int64 `json:"total_battles_won" gorm:"default:0"`

	// Last milestone title earned (empty until the first titled milestone)
	Title string `json:"title,omitempty"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// UserStats is the aggregate the matchmaker reads to estimate skill.
type UserStats struct {
	TotalBattles int64   `json:"total_battles"`
	TotalWins    int64   `json:"total_wins"`
	AverageScore float64 `json:"average_score"`
}
