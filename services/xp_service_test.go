package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rap-battle-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProgressMock() *MockProgressStore {
	m := new(MockProgressStore)
	m.On("InTransaction", mock.Anything).Return(nil)
	return m
}

func TestBattleXPAmount(t *testing.T) {
	tests := []struct {
		name     string
		result   models.BattleResult
		expected int64
	}{
		{"loss pays participation only", models.BattleResult{Won: false, UserScore: 100, OpponentScore: 900, Difficulty: models.DifficultyNightmare}, 100},
		{"loss on easy pays the same", models.BattleResult{Won: false, Difficulty: models.DifficultyEasy}, 100},
		{"narrow win on easy", models.BattleResult{Won: true, UserScore: 500, OpponentScore: 500, Difficulty: models.DifficultyEasy}, 300},
		{"comfortable win adds 50", models.BattleResult{Won: true, UserScore: 750, OpponentScore: 500, Difficulty: models.DifficultyNormal}, 350},
		{"blowout win adds 100", models.BattleResult{Won: true, UserScore: 1100, OpponentScore: 500, Difficulty: models.DifficultyNormal}, 400},
		{"margin boundary 200 is not comfortable", models.BattleResult{Won: true, UserScore: 700, OpponentScore: 500, Difficulty: models.DifficultyEasy}, 300},
		{"margin boundary 201 is", models.BattleResult{Won: true, UserScore: 701, OpponentScore: 500, Difficulty: models.DifficultyEasy}, 350},
		{"hard win adds difficulty bonus", models.BattleResult{Won: true, UserScore: 1100, OpponentScore: 500, Difficulty: models.DifficultyHard}, 450},
		{"nightmare blowout hits the cap", models.BattleResult{Won: true, UserScore: 1100, OpponentScore: 500, Difficulty: models.DifficultyNightmare}, 500},
		{"god narrow win hits the cap", models.BattleResult{Won: true, UserScore: 500, OpponentScore: 500, Difficulty: models.DifficultyGod}, 500},
		{"never exceeds the cap", models.BattleResult{Won: true, UserScore: 9999, OpponentScore: 0, Difficulty: models.DifficultyGod}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BattleXPAmount(tt.result))
		})
	}
}

func TestAwardXP_LevelUp(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 0, Level: 1}, nil)
	store.On("GetMilestoneTier", mock.Anything, 2).Return(nil, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.TotalXP == 100 && p.Level == 2 && p.LastLevelUpAt != nil
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", 100, "admin_grant")

	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 2, result.NewLevel)
	assert.Equal(t, int64(100), result.XPAwarded)
	assert.Empty(t, result.Rewards)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "GetXPEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAwardXP_NoLevelUp(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 0, Level: 1}, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.Anything).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", 99, "admin_grant")

	assert.NoError(t, err)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.NewLevel)
	store.AssertNotCalled(t, "GetMilestoneTier", mock.Anything, mock.Anything)
}

func TestAwardXP_MilestoneAtLevel50(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 0, Level: 1}, nil)
	store.On("GetMilestoneTier", mock.Anything, 50).
		Return(&models.MilestoneTier{Level: 50, Currency: 1000, Title: ""}, nil)
	store.On("AddCurrencyTransaction", mock.Anything, mock.MatchedBy(func(tx *models.CurrencyTransaction) bool {
		return tx.ExternalUserID == "user-1" && tx.Amount == 1000 && tx.Kind == models.CurrencyEarned
	})).Return(nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.Level == 50 && p.Title == "" // this tier grants currency, not a title
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", TotalXPForLevel(50), "admin_grant")

	assert.NoError(t, err)
	assert.Equal(t, 50, result.NewLevel)
	assert.Len(t, result.Rewards, 1)
	assert.Equal(t, int64(1000), result.Rewards[0].Currency)
	assert.Empty(t, result.Rewards[0].Title)
	store.AssertNumberOfCalls(t, "AddCurrencyTransaction", 1)
}

func TestAwardXP_MilestoneSetsTitle(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: TotalXPForLevel(5) - 10, Level: 4}, nil)
	store.On("GetMilestoneTier", mock.Anything, 5).
		Return(&models.MilestoneTier{Level: 5, Currency: 100, Title: "Street Poet"}, nil)
	store.On("AddCurrencyTransaction", mock.Anything, mock.Anything).Return(nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.Level == 5 && p.Title == "Street Poet"
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", 10, "admin_grant")

	assert.NoError(t, err)
	assert.Len(t, result.Rewards, 1)
	assert.Equal(t, "Street Poet", result.Rewards[0].Title)
}

func TestAwardXP_MultiLevelJumpFiresFinalMilestoneOnly(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 0, Level: 1}, nil)
	// Jump straight past 5 and 10; only level 12 is consulted.
	store.On("GetMilestoneTier", mock.Anything, 12).Return(nil, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.Anything).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", TotalXPForLevel(12), "admin_grant")

	assert.NoError(t, err)
	assert.Equal(t, 12, result.NewLevel)
	assert.Empty(t, result.Rewards)
	store.AssertNumberOfCalls(t, "GetMilestoneTier", 1)
	store.AssertNotCalled(t, "AddCurrencyTransaction", mock.Anything, mock.Anything)
}

func TestAwardBattleXP_WinUpdatesStreaks(t *testing.T) {
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "user-1", "battle", "battle-1").Return(nil, nil)
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 250, Level: 3, WinStreak: 1, BestWinStreak: 1}, nil)
	store.On("GetMilestoneTier", mock.Anything, 4).Return(nil, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.TotalXP == 550 && p.Level == 4 &&
			p.WinStreak == 2 && p.BestWinStreak == 2 &&
			p.TotalBattlesPlayed == 1 && p.TotalBattlesWon == 1
	})).Return(nil)
	store.On("RecordXPEvent", mock.Anything, mock.MatchedBy(func(e *models.XPEvent) bool {
		return e.Source == "battle" && e.EventID == "battle-1" &&
			e.Amount == 300 && e.OldLevel == 3 && e.NewLevel == 4
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardBattleXP(context.Background(), "user-1", models.BattleResult{
		BattleID:   "battle-1",
		Won:        true,
		UserScore:  500,
		Difficulty: models.DifficultyEasy,
	})

	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, int64(300), result.XPAwarded)
	store.AssertExpectations(t)
}

func TestAwardBattleXP_LossResetsStreak(t *testing.T) {
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "user-1", "battle", "battle-2").Return(nil, nil)
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 1000, Level: 5, WinStreak: 3, BestWinStreak: 5, TotalBattlesPlayed: 10, TotalBattlesWon: 7}, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.WinStreak == 0 && p.BestWinStreak == 5 &&
			p.TotalBattlesPlayed == 11 && p.TotalBattlesWon == 7
	})).Return(nil)
	store.On("RecordXPEvent", mock.Anything, mock.Anything).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardBattleXP(context.Background(), "user-1", models.BattleResult{
		BattleID:   "battle-2",
		Won:        false,
		Difficulty: models.DifficultyNightmare,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100), result.XPAwarded)
	assert.False(t, result.LeveledUp)
}

func TestAwardBattleXP_ReplayedEventIsNoOp(t *testing.T) {
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "user-1", "battle", "battle-1").
		Return(&models.XPEvent{Source: "battle", EventID: "battle-1", Amount: 300, OldLevel: 3, NewLevel: 4}, nil)

	svc := NewXPService(store)
	result, err := svc.AwardBattleXP(context.Background(), "user-1", models.BattleResult{
		BattleID:   "battle-1",
		Won:        true,
		Difficulty: models.DifficultyEasy,
	})

	assert.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, int64(300), result.XPAwarded)
	assert.Equal(t, 4, result.NewLevel)
	store.AssertNotCalled(t, "GetUserProgress", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateUserProgress", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RecordXPEvent", mock.Anything, mock.Anything)
}

func TestAwardBattleXP_SameBattleIDDistinctUsers(t *testing.T) {
	// Both sides of a real-player battle report the same battle id; the
	// loser's award must not be swallowed by the winner's idempotency row.
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "winner", "battle", "battle-7").
		Return(&models.XPEvent{ExternalUserID: "winner", Source: "battle", EventID: "battle-7", Amount: 300, OldLevel: 3, NewLevel: 4}, nil)
	store.On("GetXPEvent", mock.Anything, "loser", "battle", "battle-7").Return(nil, nil)
	store.On("GetUserProgress", mock.Anything, "loser").
		Return(&models.UserProgress{ExternalUserID: "loser", TotalXP: 500, Level: 4}, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.ExternalUserID == "loser" && p.TotalXP == 600
	})).Return(nil)
	store.On("RecordXPEvent", mock.Anything, mock.MatchedBy(func(e *models.XPEvent) bool {
		return e.ExternalUserID == "loser" && e.EventID == "battle-7"
	})).Return(nil)

	svc := NewXPService(store)

	redelivered, err := svc.AwardBattleXP(context.Background(), "winner", models.BattleResult{
		BattleID: "battle-7", Won: true, Difficulty: models.DifficultyNormal,
	})
	assert.NoError(t, err)
	assert.True(t, redelivered.Replayed, "the winner already has an event row for this battle")

	result, err := svc.AwardBattleXP(context.Background(), "loser", models.BattleResult{
		BattleID:   "battle-7",
		Won:        false,
		Difficulty: models.DifficultyNormal,
	})

	assert.NoError(t, err)
	assert.False(t, result.Replayed, "another user's event row must not short-circuit this award")
	assert.Equal(t, int64(100), result.XPAwarded)
	assert.Equal(t, 4, result.OldLevel)
	store.AssertExpectations(t)
}

func TestAwardBattleXP_InitializesNewUser(t *testing.T) {
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "newbie", "battle", "battle-9").Return(nil, nil)
	store.On("GetUserProgress", mock.Anything, "newbie").Return(nil, nil)
	store.On("InitializeUserProgress", mock.Anything, "newbie").
		Return(&models.UserProgress{ExternalUserID: "newbie", Level: 1}, nil)
	store.On("GetMilestoneTier", mock.Anything, 2).Return(nil, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.TotalXP == 100 && p.Level == 2 && p.TotalBattlesPlayed == 1
	})).Return(nil)
	store.On("RecordXPEvent", mock.Anything, mock.Anything).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardBattleXP(context.Background(), "newbie", models.BattleResult{
		BattleID:   "battle-9",
		Won:        false,
		Difficulty: models.DifficultyEasy,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.NewLevel)
	store.AssertExpectations(t)
}

func TestAwardTournamentXP_PlacementAmounts(t *testing.T) {
	tests := []struct {
		placement int
		expected  int64
	}{
		{1, 5000},
		{2, 3000},
		{3, 2000},
		{4, 1500},
		{5, 1000},
		{8, 1000},
		{17, 1000},
	}

	for _, tt := range tests {
		store := newProgressMock()
		source := fmt.Sprintf("tournament_rank_%d", tt.placement)
		store.On("GetXPEvent", mock.Anything, "user-1", source, "t-1").Return(nil, nil)
		store.On("GetUserProgress", mock.Anything, "user-1").
			Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: TotalXPForLevel(30), Level: 30}, nil)
		store.On("GetMilestoneTier", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
		store.On("UpdateUserProgress", mock.Anything, mock.Anything).Return(nil)
		store.On("RecordXPEvent", mock.Anything, mock.Anything).Return(nil)

		svc := NewXPService(store)
		result, err := svc.AwardTournamentXP(context.Background(), "user-1", "t-1", tt.placement)

		assert.NoError(t, err)
		assert.Equal(t, tt.expected, result.XPAwarded, "placement %d", tt.placement)
	}
}

func TestAwardLoginXP(t *testing.T) {
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 30, Level: 1}, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.TotalXP == 80 && p.Level == 1
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardLoginXP(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(50), result.XPAwarded)
	// Daily logins are not event-keyed; duplicate gating lives upstream.
	store.AssertNotCalled(t, "GetXPEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RecordXPEvent", mock.Anything, mock.Anything)
}

func TestAwardLoginXP_CrossesLevelBoundary(t *testing.T) {
	// A second 50-XP login from a fresh account lands exactly on the 100 XP
	// needed for level 2.
	store := newProgressMock()
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 50, Level: 1}, nil)
	store.On("GetMilestoneTier", mock.Anything, 2).Return(nil, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.TotalXP == 100 && p.Level == 2
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardLoginXP(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.NewLevel)
}

func TestAwardChallengeXP(t *testing.T) {
	store := newProgressMock()
	store.On("GetXPEvent", mock.Anything, "user-1", "challenge_daily", "ch-1").Return(nil, nil)
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{ExternalUserID: "user-1", TotalXP: 1000, Level: 5}, nil)
	store.On("UpdateUserProgress", mock.Anything, mock.Anything).Return(nil)
	store.On("RecordXPEvent", mock.Anything, mock.MatchedBy(func(e *models.XPEvent) bool {
		return e.Source == "challenge_daily" && e.EventID == "ch-1" && e.Amount == 200
	})).Return(nil)

	svc := NewXPService(store)
	result, err := svc.AwardChallengeXP(context.Background(), "user-1", "ch-1", "daily")

	assert.NoError(t, err)
	assert.Equal(t, int64(200), result.XPAwarded)
	store.AssertExpectations(t)
}

func TestAward_TransactionErrorPropagates(t *testing.T) {
	store := new(MockProgressStore)
	store.On("InTransaction", mock.Anything).Return(errors.New("connection reset"))

	svc := NewXPService(store)
	result, err := svc.AwardXP(context.Background(), "user-1", 100, "admin_grant")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGetUserProgressInfo(t *testing.T) {
	store := new(MockProgressStore)
	store.On("GetUserProgress", mock.Anything, "user-1").
		Return(&models.UserProgress{
			ExternalUserID: "user-1", TotalXP: 300, Level: 3,
			Title: "Rising Star", WinStreak: 2, BestWinStreak: 4,
			TotalBattlesPlayed: 12, TotalBattlesWon: 7,
		}, nil)

	svc := NewXPService(store)
	info, err := svc.GetUserProgressInfo(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, info.Level)
	assert.Equal(t, int64(300), info.TotalXP)
	assert.Equal(t, int64(60), info.CurrentLevelXP)   // 300 - 240 into level 3
	assert.Equal(t, int64(196), info.XPNeededForNext) // 436 - 240
	assert.Equal(t, 30, info.ProgressPercent)
	assert.Equal(t, "Rising Star", info.Title)
	assert.Equal(t, 2, info.WinStreak)
}

func TestGetUserProgressInfo_UnknownUserReadsAsFresh(t *testing.T) {
	store := new(MockProgressStore)
	store.On("GetUserProgress", mock.Anything, "ghost").Return(nil, nil)

	svc := NewXPService(store)
	info, err := svc.GetUserProgressInfo(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, int64(0), info.TotalXP)
	assert.Equal(t, int64(0), info.CurrentLevelXP)
	assert.Equal(t, 0, info.ProgressPercent)
	// Reads never create rows.
	store.AssertNotCalled(t, "InitializeUserProgress", mock.Anything, mock.Anything)
}

func TestGetLeaderboard_NormalizesLimit(t *testing.T) {
	store := new(MockProgressStore)
	store.On("TopUsersByLevel", mock.Anything, 25).Return([]models.UserProgress{}, nil)

	svc := NewXPService(store)
	_, err := svc.GetLeaderboard(context.Background(), 0)

	assert.NoError(t, err)
	store.AssertCalled(t, "TopUsersByLevel", mock.Anything, 25)
}
