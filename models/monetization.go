// models/monetization.go
package models

import (
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// MonetizationConfig gathers the tunable money/matchmaking numbers.
// Everything is read from env once at startup; code paths take the struct,
// never os.Getenv, so tests can pin their own values.
type MonetizationConfig struct {
	// External chain addresses for the three well-known platform wallets.
	RewardsPoolAddress   string
	CompanyProfitAddress string
	RevenueShareAddress  string

	// Profit sweep: everything above the threshold in the rewards pool is
	// moved to company profit on each sweep.
	ProfitSweepThreshold decimal.Decimal
	SweepInterval        time.Duration

	// Low-balance alerting for the rewards pool float.
	RewardsPoolMinBalance decimal.Decimal
	BalanceCheckInterval  time.Duration

	// USDC reward amounts per event type.
	BattleWinReward     decimal.Decimal
	TournamentWinReward decimal.Decimal

	// Stake limits for wagered battles.
	MinStake decimal.Decimal
	MaxStake decimal.Decimal

	// Matchmaking queue entry TTL and how often the purge job runs.
	MatchQueueTTL      time.Duration
	QueuePurgeInterval time.Duration
}

// LoadMonetizationConfig reads MONETIZATION_* settings with production defaults.
func LoadMonetizationConfig() MonetizationConfig {
	return MonetizationConfig{
		RewardsPoolAddress:   os.Getenv("REWARDS_POOL_WALLET"),
		CompanyProfitAddress: os.Getenv("COMPANY_PROFIT_WALLET"),
		RevenueShareAddress:  os.Getenv("REVENUE_SHARE_WALLET"),

		ProfitSweepThreshold: envDecimal("PROFIT_SWEEP_THRESHOLD", "1000"),
		SweepInterval:        envDuration("PROFIT_SWEEP_INTERVAL", time.Hour),

		RewardsPoolMinBalance: envDecimal("REWARDS_POOL_MIN_BALANCE", "100"),
		BalanceCheckInterval:  envDuration("BALANCE_CHECK_INTERVAL", 10*time.Minute),

		BattleWinReward:     envDecimal("BATTLE_WIN_REWARD_USDC", "0.25"),
		TournamentWinReward: envDecimal("TOURNAMENT_WIN_REWARD_USDC", "25"),

		MinStake: envDecimal("MIN_STAKE_USDC", "1"),
		MaxStake: envDecimal("MAX_STAKE_USDC", "100"),

		MatchQueueTTL:      envDuration("MATCH_QUEUE_TTL", 30*time.Second),
		QueuePurgeInterval: envDuration("QUEUE_PURGE_INTERVAL", 30*time.Second),
	}
}

func envDecimal(key, fallback string) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("⚠️  Invalid decimal for %s (%q), using default %s", key, raw, fallback)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  Invalid duration for %s (%q), using default %s", key, raw, fallback)
		return fallback
	}
	return d
}
