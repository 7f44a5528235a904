// services/xp_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rap-battle-service/models"

	"github.com/google/uuid"
)

// XP amounts per event type.
const (
	BattleParticipationXP = 100
	BattleWinBaseXP       = 300
	BattleXPCap           = 500
	ChallengeXP           = 200
	LoginXP               = 50
)

// Difficulty bonus on winning a battle.
var battleDifficultyBonus = map[string]int64{
	models.DifficultyEasy:      0,
	models.DifficultyNormal:    0,
	models.DifficultyHard:      50,
	models.DifficultyNightmare: 100,
	models.DifficultyGod:       200,
}

// Tournament XP by final placement; anything outside 1-8 gets the 5th-8th amount.
var tournamentPlacementXP = map[int]int64{
	1: 5000,
	2: 3000,
	3: 2000,
	4: 1500,
	5: 1000, 6: 1000, 7: 1000, 8: 1000,
}

// RewardGrant is one milestone reward delivered by a level-up.
type RewardGrant struct {
	Level    int    `json:"level"`
	Currency int64  `json:"currency"`
	Title    string `json:"title,omitempty"`
}

// LevelUpResult reports the outcome of any XP award.
type LevelUpResult struct {
	LeveledUp bool          `json:"leveled_up"`
	OldLevel  int           `json:"old_level"`
	NewLevel  int           `json:"new_level"`
	XPAwarded int64         `json:"xp_awarded"`
	Rewards   []RewardGrant `json:"rewards,omitempty"`
	Replayed  bool          `json:"replayed,omitempty"` // duplicate event id, nothing awarded
}

// ProgressInfo is the read-only projection polled by the client UI.
type ProgressInfo struct {
	Level              int    `json:"level"`
	TotalXP            int64  `json:"total_xp"`
	CurrentLevelXP     int64  `json:"current_level_xp"`
	XPNeededForNext    int64  `json:"xp_needed_for_next_level"`
	ProgressPercent    int    `json:"progress_percent"`
	Title              string `json:"title,omitempty"`
	WinStreak          int    `json:"win_streak"`
	BestWinStreak      int    `json:"best_win_streak"`
	TotalBattlesPlayed int64  `json:"total_battles_played"`
	TotalBattlesWon    int64  `json:"total_battles_won"`
}

// XPService converts gameplay events into XP, detects level-ups and
// dispatches milestone rewards. All mutations go through award(), which runs
// in a single storage transaction.
type XPService struct {
	store ProgressStore
}

func NewXPService(store ProgressStore) *XPService {
	return &XPService{store: store}
}

// BattleXPAmount computes the XP for a battle result: 100 for showing up,
// 300 base on a win plus performance and difficulty bonuses, capped at 500.
// A loss is always exactly 100.
func BattleXPAmount(result models.BattleResult) int64 {
	if !result.Won {
		return BattleParticipationXP
	}
	amount := int64(BattleWinBaseXP)
	margin := result.ScoreMargin()
	switch {
	case margin > 500:
		amount += 100
	case margin > 200:
		amount += 50
	}
	amount += battleDifficultyBonus[result.Difficulty]
	if amount > BattleXPCap {
		amount = BattleXPCap
	}
	return amount
}

// AwardBattleXP awards XP for a completed battle, keyed by the battle id so
// a redelivered completion event is a no-op.
func (s *XPService) AwardBattleXP(ctx context.Context, userID string, result models.BattleResult) (*LevelUpResult, error) {
	amount := BattleXPAmount(result)
	return s.award(ctx, userID, amount, "battle", result.BattleID, func(prog *models.UserProgress) {
		prog.TotalBattlesPlayed++
		if result.Won {
			prog.TotalBattlesWon++
			prog.WinStreak++
			if prog.WinStreak > prog.BestWinStreak {
				prog.BestWinStreak = prog.WinStreak
			}
		} else {
			prog.WinStreak = 0
		}
	})
}

// AwardTournamentXP awards placement XP after a tournament finishes.
func (s *XPService) AwardTournamentXP(ctx context.Context, userID, tournamentID string, placement int) (*LevelUpResult, error) {
	amount, ok := tournamentPlacementXP[placement]
	if !ok {
		amount = 1000
	}
	source := fmt.Sprintf("tournament_rank_%d", placement)
	return s.award(ctx, userID, amount, source, tournamentID, nil)
}

// AwardChallengeXP awards the flat challenge amount; the challenge type is
// provenance only.
func (s *XPService) AwardChallengeXP(ctx context.Context, userID, challengeID, challengeType string) (*LevelUpResult, error) {
	return s.award(ctx, userID, ChallengeXP, "challenge_"+challengeType, challengeID, nil)
}

// AwardLoginXP awards the daily login bonus. Not event-keyed: once-per-day
// gating belongs to the caller.
func (s *XPService) AwardLoginXP(ctx context.Context, userID string) (*LevelUpResult, error) {
	return s.award(ctx, userID, LoginXP, "daily_login", "", nil)
}

// AwardXP is the generic entry point used by training lessons and admin grants.
func (s *XPService) AwardXP(ctx context.Context, userID string, amount int64, source string) (*LevelUpResult, error) {
	return s.award(ctx, userID, amount, source, "", nil)
}

// award is the shared core: load-or-create progress, add XP, recompute the
// level from the curve, dispatch the milestone for the final level when one
// exists, and record the idempotency event when keyed. Multi-level jumps
// fire at most one milestone, parameterized by the final level only —
// rewards are keyed by absolute level, not by transition.
func (s *XPService) award(ctx context.Context, userID string, amount int64, source, eventID string, mutate func(*models.UserProgress)) (*LevelUpResult, error) {
	var result *LevelUpResult

	err := s.store.InTransaction(ctx, func(ctx context.Context, store ProgressStore) error {
		if eventID != "" {
			prior, err := store.GetXPEvent(ctx, userID, source, eventID)
			if err != nil {
				return fmt.Errorf("failed to check xp event: %w", err)
			}
			if prior != nil {
				result = &LevelUpResult{
					LeveledUp: prior.NewLevel > prior.OldLevel,
					OldLevel:  prior.OldLevel,
					NewLevel:  prior.NewLevel,
					XPAwarded: prior.Amount,
					Replayed:  true,
				}
				return nil
			}
		}

		prog, err := store.GetUserProgress(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		if prog == nil {
			prog, err = store.InitializeUserProgress(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to initialize progress: %w", err)
			}
		}

		oldLevel := prog.Level
		prog.TotalXP += amount
		prog.Level = LevelForXP(prog.TotalXP)
		if mutate != nil {
			mutate(prog)
		}

		result = &LevelUpResult{
			OldLevel:  oldLevel,
			NewLevel:  prog.Level,
			XPAwarded: amount,
		}

		if prog.Level > oldLevel {
			result.LeveledUp = true
			now := time.Now()
			prog.LastLevelUpAt = &now

			grant, err := s.dispatchMilestone(ctx, store, prog)
			if err != nil {
				return err
			}
			if grant != nil {
				result.Rewards = append(result.Rewards, *grant)
			}
		}

		if err := store.UpdateUserProgress(ctx, prog); err != nil {
			return fmt.Errorf("failed to persist progress: %w", err)
		}

		if eventID != "" {
			event := &models.XPEvent{
				ID:             uuid.NewString(),
				ExternalUserID: userID,
				Source:         source,
				EventID:        eventID,
				Amount:         amount,
				OldLevel:       oldLevel,
				NewLevel:       prog.Level,
			}
			if err := store.RecordXPEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to record xp event: %w", err)
			}
		}

		log.Printf("🎮 XP awarded: %s +%d → XP=%d, Lvl=%d (source: %s)",
			userID, amount, prog.TotalXP, prog.Level, source)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// dispatchMilestone grants the configured reward for the level just reached,
// if any. Levels without a tier row grant nothing.
func (s *XPService) dispatchMilestone(ctx context.Context, store ProgressStore, prog *models.UserProgress) (*RewardGrant, error) {
	tier, err := store.GetMilestoneTier(ctx, prog.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to look up milestone tier: %w", err)
	}
	if tier == nil {
		return nil, nil
	}

	if tier.Currency > 0 {
		currencyTx := &models.CurrencyTransaction{
			ID:             uuid.NewString(),
			ExternalUserID: prog.ExternalUserID,
			Amount:         tier.Currency,
			Kind:           models.CurrencyEarned,
			Description:    fmt.Sprintf("Level %d milestone reward", tier.Level),
		}
		if err := store.AddCurrencyTransaction(ctx, currencyTx); err != nil {
			return nil, fmt.Errorf("failed to grant milestone currency: %w", err)
		}
	}
	if tier.Title != "" {
		prog.Title = tier.Title
	}

	log.Printf("🏆 Milestone reached: %s hit level %d (+%d currency, title %q)",
		prog.ExternalUserID, tier.Level, tier.Currency, tier.Title)

	return &RewardGrant{Level: tier.Level, Currency: tier.Currency, Title: tier.Title}, nil
}

// GetUserProgressInfo builds the UI polling projection. Absent users read as
// a fresh level-1 profile without creating a row.
func (s *XPService) GetUserProgressInfo(ctx context.Context, userID string) (*ProgressInfo, error) {
	prog, err := s.store.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if prog == nil {
		prog = &models.UserProgress{ExternalUserID: userID, Level: 1}
	}

	currentLevelXP := prog.TotalXP - TotalXPForLevel(prog.Level)
	needed := XPRequiredForLevel(prog.Level)
	percent := 0
	if needed > 0 {
		percent = int(currentLevelXP * 100 / needed)
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return &ProgressInfo{
		Level:              prog.Level,
		TotalXP:            prog.TotalXP,
		CurrentLevelXP:     currentLevelXP,
		XPNeededForNext:    needed,
		ProgressPercent:    percent,
		Title:              prog.Title,
		WinStreak:          prog.WinStreak,
		BestWinStreak:      prog.BestWinStreak,
		TotalBattlesPlayed: prog.TotalBattlesPlayed,
		TotalBattlesWon:    prog.TotalBattlesWon,
	}, nil
}

// GetLeaderboard returns the top users by level.
func (s *XPService) GetLeaderboard(ctx context.Context, limit int) ([]models.UserProgress, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.store.TopUsersByLevel(ctx, limit)
}
