package models

import "time"

// Battle difficulty labels. `god` only appears as a battle setting, never as
// an AI roster difficulty.
const (
	DifficultyEasy      = "easy"
	DifficultyNormal    = "normal"
	DifficultyHard      = "hard"
	DifficultyNightmare = "nightmare"
	DifficultyGod       = "god"
)

// BattleResult records a single completed battle from the requesting user's
// side. BattleID is the external event id: replaying the same battle through
// the XP ledger is a no-op.
type BattleResult struct {
	BattleID      string `json:"battle_id"`
	Won           bool   `json:"won"`
	UserScore     int64  `json:"user_score"`
	OpponentScore int64  `json:"opponent_score"`
	Difficulty    string `json:"difficulty"`
}

// ScoreMargin returns how far ahead (or behind) the user finished.
func (r BattleResult) ScoreMargin() int64 {
	return r.UserScore - r.OpponentScore
}

// RandomMatch is the opponent selection result handed back to the battle
// flow. Not persisted.
type RandomMatch struct {
	OpponentID          string `json:"opponent_id"`
	OpponentName        string `json:"opponent_name"`
	OpponentCharacterID string `json:"opponent_character_id"`
	Difficulty          string `json:"difficulty"`
	LyricComplexity     int    `json:"lyric_complexity"` // 0-100
	StyleIntensity      int    `json:"style_intensity"`  // 0-100
	IsAI                bool   `json:"is_ai"`
}

// BattleLog records a single completed battle for history and for the
// matchmaker's average-score estimate.
type BattleLog struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	OpponentID     string `gorm:"index" json:"opponent_id"`
	UserScore      int64  `json:"user_score"`
	OpponentScore  int64  `json:"opponent_score"`
	Won            bool   `json:"won"`
	Difficulty     string `gorm:"type:varchar(16)" json:"difficulty"`
	XPEarned       int64  `json:"xp_earned" gorm:"default:0"`

	Timestamps
}

// XPEvent is the idempotency record for keyed XP awards: one row per
// (user, source, event id). The user is part of the key because both sides
// of a real-player battle report the same battle id; each participant gets
// their own award exactly once. The level transition is stored so a replayed
// event can return the original result without re-awarding.
type XPEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_xp_events_user_source_event" json:"external_user_id"`
	Source         string    `gorm:"not null;uniqueIndex:idx_xp_events_user_source_event" json:"source"`
	EventID        string    `gorm:"not null;uniqueIndex:idx_xp_events_user_source_event" json:"event_id"`
	Amount         int64     `gorm:"not null" json:"amount"`
	OldLevel       int       `gorm:"not null" json:"old_level"`
	NewLevel       int       `gorm:"not null" json:"new_level"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
