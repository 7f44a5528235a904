// services/scheduler.go
package services

import (
	"context"
	"log"

	"rap-battle-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMonetizationScheduler runs the periodic wallet and matchmaking
// housekeeping: profit sweeps, low-balance checks and queue purges.
func StartMonetizationScheduler(walletSvc *WalletService, matchSvc *MatchmakingService, cfg models.MonetizationConfig) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] ❌ Failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			result, err := walletSvc.SweepProfits(context.Background())
			if err != nil {
				log.Printf("[Scheduler] ❌ Profit sweep failed: %v", err)
				return
			}
			if result.Transferred {
				log.Printf("[Scheduler] ✅ Swept %s USDC to company profit", result.Amount.StringFixed(6))
			}
		}),
	); err != nil {
		log.Printf("[Scheduler] ❌ Failed to schedule profit sweep: %v", err)
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.BalanceCheckInterval),
		gocron.NewTask(func() {
			alerts, err := walletSvc.CheckBalances(context.Background())
			if err != nil {
				log.Printf("[Scheduler] ❌ Balance check failed: %v", err)
				return
			}
			for _, a := range alerts {
				log.Printf("[Scheduler] 🚨 %s below minimum: %s < %s",
					a.WalletType, a.Balance.StringFixed(6), a.MinBalance.StringFixed(6))
			}
		}),
	); err != nil {
		log.Printf("[Scheduler] ❌ Failed to schedule balance check: %v", err)
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.QueuePurgeInterval),
		gocron.NewTask(matchSvc.PurgeExpired),
	); err != nil {
		log.Printf("[Scheduler] ❌ Failed to schedule queue purge: %v", err)
	}
}
