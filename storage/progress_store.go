// storage/progress_store.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"rap-battle-service/models"
	"rap-battle-service/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProgressStore implements services.ProgressStore over postgres.
type GormProgressStore struct {
	db *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{db: db}
}

func (s *GormProgressStore) GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.db.WithContext(ctx).Where("external_user_id = ?", userID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

func (s *GormProgressStore) InitializeUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	prog := &models.UserProgress{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		TotalXP:        0,
		Level:          1,
	}
	if err := s.db.WithContext(ctx).Create(prog).Error; err != nil {
		return nil, err
	}
	return prog, nil
}

func (s *GormProgressStore) UpdateUserProgress(ctx context.Context, prog *models.UserProgress) error {
	return s.db.WithContext(ctx).Save(prog).Error
}

// GetUserStats aggregates battle counters from the progress row and the
// average score from the battle log. Users with no history read as zeroes;
// the matchmaker applies its own defaults.
func (s *GormProgressStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := &models.UserStats{}

	prog, err := s.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prog != nil {
		stats.TotalBattles = prog.TotalBattlesPlayed
		stats.TotalWins = prog.TotalBattlesWon
	}

	var avg *float64
	err = s.db.WithContext(ctx).
		Model(&models.BattleLog{}).
		Select("AVG(user_score)").
		Where("external_user_id = ?", userID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageScore = *avg
	}
	return stats, nil
}

func (s *GormProgressStore) GetUser(ctx context.Context, userID string) (*models.BattleUser, error) {
	var user models.BattleUser
	err := s.db.WithContext(ctx).Where("external_user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormProgressStore) AddCurrencyTransaction(ctx context.Context, tx *models.CurrencyTransaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *GormProgressStore) TopUsersByLevel(ctx context.Context, limit int) ([]models.UserProgress, error) {
	var top []models.UserProgress
	err := s.db.WithContext(ctx).
		Order("level DESC, total_xp DESC").
		Limit(limit).
		Find(&top).Error
	return top, err
}

func (s *GormProgressStore) RecordBattle(ctx context.Context, battle *models.BattleLog) error {
	return s.db.WithContext(ctx).Create(battle).Error
}

func (s *GormProgressStore) GetMilestoneTier(ctx context.Context, level int) (*models.MilestoneTier, error) {
	var tier models.MilestoneTier
	err := s.db.WithContext(ctx).Where("level = ?", level).First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (s *GormProgressStore) GetXPEvent(ctx context.Context, userID, source, eventID string) (*models.XPEvent, error) {
	var event models.XPEvent
	err := s.db.WithContext(ctx).
		Where("external_user_id = ? AND source = ? AND event_id = ?", userID, source, eventID).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *GormProgressStore) RecordXPEvent(ctx context.Context, event *models.XPEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// InTransaction binds a store to one database transaction so an XP award and
// its side effects commit as a unit.
func (s *GormProgressStore) InTransaction(ctx context.Context, fn func(ctx context.Context, store services.ProgressStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormProgressStore{db: tx})
	})
}

// SeedMilestoneTiers inserts the default reward table, skipping levels that
// already have a row. Safe to run on every boot.
func SeedMilestoneTiers(db *gorm.DB) error {
	for _, tier := range models.DefaultMilestoneTiers {
		var count int64
		if err := db.Model(&models.MilestoneTier{}).Where("level = ?", tier.Level).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check milestone tier %d: %w", tier.Level, err)
		}
		if count > 0 {
			continue
		}
		seed := tier
		seed.ID = uuid.NewString()
		if err := db.Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed milestone tier %d: %w", tier.Level, err)
		}
	}
	return nil
}
