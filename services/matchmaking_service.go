// services/matchmaking_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"rap-battle-service/models"
)

// MatchOptions carries a battle request's preferences. Both filters are
// best-effort: a filter that would empty the candidate pool is discarded.
type MatchOptions struct {
	UserID              string   `json:"user_id"`
	Difficulty          string   `json:"difficulty,omitempty"`
	PreferredCharacters []string `json:"preferred_characters,omitempty"`
}

// Roster difficulty label → skill number used for weight computation.
var difficultySkill = map[string]int{
	models.DifficultyEasy:      2,
	models.DifficultyNormal:    5,
	models.DifficultyHard:      7,
	models.DifficultyNightmare: 10,
}

// Per-difficulty lyric complexity / style intensity for AI opponents.
var difficultyComplexity = map[string]int{
	models.DifficultyEasy:      30,
	models.DifficultyNormal:    50,
	models.DifficultyHard:      70,
	models.DifficultyNightmare: 90,
}

var difficultyIntensity = map[string]int{
	models.DifficultyEasy:      30,
	models.DifficultyNormal:    50,
	models.DifficultyHard:      75,
	models.DifficultyNightmare: 95,
}

type queueEntry struct {
	userID   string
	joinedAt time.Time
	options  MatchOptions
}

// MatchmakingService selects opponents for battle requests: a real waiting
// player when one is queued, otherwise a skill-weighted random pick from the
// AI roster. The wait queue is process-local shared state guarded by a
// single mutex; entry insert, pairing scan and removal all happen under one
// acquisition, so two concurrent CheckForMatch calls cannot double-match an
// entry. Single-instance deployment is the assumed constraint.
type MatchmakingService struct {
	store ProgressStore

	mu    sync.Mutex
	queue map[string]*queueEntry

	queueTTL time.Duration
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewMatchmakingService(store ProgressStore, cfg models.MonetizationConfig) *MatchmakingService {
	return &MatchmakingService{
		store:    store,
		queue:    make(map[string]*queueEntry),
		queueTTL: cfg.MatchQueueTTL,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FindRandomMatch resolves an AI opponent appropriate for the requester's
// skill. It never fails for lack of candidates; only a stats read error
// propagates.
func (s *MatchmakingService) FindRandomMatch(ctx context.Context, opts MatchOptions) (*models.RandomMatch, error) {
	s.PurgeExpired()

	stats, err := s.store.GetUserStats(ctx, opts.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}
	userSkill := computeSkillLevel(stats)

	pool := buildCandidatePool(opts)
	opponent := s.pickWeighted(pool, userSkill)

	return &models.RandomMatch{
		OpponentID:          opponent.ID,
		OpponentName:        opponent.Name,
		OpponentCharacterID: opponent.ID,
		Difficulty:          opponent.Difficulty,
		LyricComplexity:     difficultyComplexity[opponent.Difficulty],
		StyleIntensity:      difficultyIntensity[opponent.Difficulty],
		IsAI:                true,
	}, nil
}

// QueueForMatch registers the user in the wait queue. Re-queueing refreshes
// the entry.
func (s *MatchmakingService) QueueForMatch(opts MatchOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	s.queue[opts.UserID] = &queueEntry{
		userID:   opts.UserID,
		joinedAt: s.now(),
		options:  opts,
	}
	log.Printf("🎤 Matchmaking: %s queued (%d waiting)", opts.UserID, len(s.queue))
}

// CheckForMatch scans the queue for another waiting player. On a hit, both
// entries are removed atomically and the opponent is described from their
// stats-derived skill. If the paired user's record cannot be loaded the
// request degrades to an AI opponent rather than failing. (nil, nil) means
// keep waiting.
func (s *MatchmakingService) CheckForMatch(ctx context.Context, userID string) (*models.RandomMatch, error) {
	s.mu.Lock()
	s.purgeExpiredLocked()

	self, waiting := s.queue[userID]
	if !waiting {
		s.mu.Unlock()
		return nil, nil
	}

	var other *queueEntry
	for id, entry := range s.queue {
		if id != userID {
			other = entry
			break
		}
	}
	if other == nil {
		s.mu.Unlock()
		return nil, nil
	}

	// Claim the pairing: both entries leave the queue under the same lock.
	delete(s.queue, self.userID)
	delete(s.queue, other.userID)
	s.mu.Unlock()

	match, err := s.describeRealOpponent(ctx, other.userID)
	if err != nil {
		log.Printf("⚠️  Matchmaking: failed to load paired user %s (%v), falling back to AI", other.userID, err)
		return s.FindRandomMatch(ctx, MatchOptions{UserID: userID})
	}

	log.Printf("🤝 Matchmaking: paired %s with %s", userID, other.userID)
	return match, nil
}

// CancelMatchmaking removes the user's queue entry. No-op when absent.
func (s *MatchmakingService) CancelMatchmaking(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queue, userID)
}

// PurgeExpired sweeps entries older than the queue TTL. Called lazily from
// every queue operation and periodically by the scheduler.
func (s *MatchmakingService) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
}

func (s *MatchmakingService) purgeExpiredLocked() {
	cutoff := s.now().Add(-s.queueTTL)
	for id, entry := range s.queue {
		if entry.joinedAt.Before(cutoff) {
			delete(s.queue, id)
			log.Printf("⌛ Matchmaking: %s timed out of queue", id)
		}
	}
}

// QueueLength reports the number of waiting users (after a sweep).
func (s *MatchmakingService) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	return len(s.queue)
}

func (s *MatchmakingService) describeRealOpponent(ctx context.Context, opponentID string) (*models.RandomMatch, error) {
	user, err := s.store.GetUser(ctx, opponentID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("paired user %s not found", opponentID)
	}
	stats, err := s.store.GetUserStats(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	skill := computeSkillLevel(stats)
	characterID := user.CharacterID
	if characterID == "" {
		characterID = models.AIRoster[0].ID
	}

	return &models.RandomMatch{
		OpponentID:          user.ExternalUserID,
		OpponentName:        models.DisplayName(user.Username),
		OpponentCharacterID: characterID,
		Difficulty:          skillLevelToDifficulty(skill),
		LyricComplexity:     realPlayerComplexity(skill),
		StyleIntensity:      realPlayerIntensity(skill),
		IsAI:                false,
	}, nil
}

// computeSkillLevel estimates skill in [1,10] from historical stats:
// floor(winRate*5 + avgScore/20), clamped. No battles reads as win rate 0;
// a missing average score defaults to 50.
func computeSkillLevel(stats *models.UserStats) int {
	winRate := 0.0
	avgScore := 50.0
	if stats != nil {
		if stats.TotalBattles > 0 {
			winRate = float64(stats.TotalWins) / float64(stats.TotalBattles)
		}
		if stats.AverageScore > 0 {
			avgScore = stats.AverageScore
		}
	}
	skill := int(winRate*5 + avgScore/20)
	if skill < 1 {
		skill = 1
	}
	if skill > 10 {
		skill = 10
	}
	return skill
}

func skillLevelToDifficulty(skill int) string {
	switch {
	case skill <= 3:
		return models.DifficultyEasy
	case skill <= 6:
		return models.DifficultyNormal
	case skill <= 8:
		return models.DifficultyHard
	default:
		return models.DifficultyNightmare
	}
}

func realPlayerComplexity(skill int) int {
	c := 50 + skill*4
	if c > 90 {
		c = 90
	}
	return c
}

func realPlayerIntensity(skill int) int {
	i := 50 + int(float64(skill)*4.5)
	if i > 95 {
		i = 95
	}
	return i
}

// buildCandidatePool applies the request's character and difficulty filters
// to the roster. A filter that would empty the pool is dropped; the result
// is never empty.
func buildCandidatePool(opts MatchOptions) []models.Character {
	pool := models.AIRoster

	if len(opts.PreferredCharacters) > 0 {
		preferred := make(map[string]bool, len(opts.PreferredCharacters))
		for _, id := range opts.PreferredCharacters {
			preferred[id] = true
		}
		var filtered []models.Character
		for _, c := range pool {
			if preferred[c.ID] {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	if opts.Difficulty != "" {
		var filtered []models.Character
		for _, c := range pool {
			if c.Difficulty == opts.Difficulty {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		} else {
			// Conflicting filters: discard both rather than return nothing.
			pool = models.AIRoster
		}
	}

	return pool
}

// candidateWeight biases selection toward opponents near the requester's
// skill while keeping every candidate above zero probability.
func candidateWeight(candidate models.Character, userSkill int) float64 {
	diff := difficultySkill[candidate.Difficulty] - userSkill
	if diff < 0 {
		diff = -diff
	}
	w := 1 - float64(diff)/10
	if w < 0.1 {
		w = 0.1
	}
	return w
}

// pickWeighted runs cumulative-weight roulette over the pool.
func (s *MatchmakingService) pickWeighted(pool []models.Character, userSkill int) models.Character {
	total := 0.0
	for _, c := range pool {
		total += candidateWeight(c, userSkill)
	}

	s.rngMu.Lock()
	r := s.rng.Float64() * total
	s.rngMu.Unlock()

	for _, c := range pool {
		r -= candidateWeight(c, userSkill)
		if r <= 0 {
			return c
		}
	}
	return pool[len(pool)-1]
}
