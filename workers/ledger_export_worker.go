package workers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"rap-battle-service/services"
	"rap-battle-service/utils"
)

// LedgerExportWorker periodically exports new wallet transactions as CSV to
// R2 for off-site audit. The cursor only advances when an upload succeeds,
// so a failed window is retried on the next tick.
type LedgerExportWorker struct {
	Store services.WalletStore
}

func NewLedgerExportWorker(store services.WalletStore) *LedgerExportWorker {
	return &LedgerExportWorker{Store: store}
}

// Run blocks until ctx is cancelled.
func (w *LedgerExportWorker) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting wallet ledger export worker...")
	cursor := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ledger export worker stopped.")
			return
		case <-ticker.C:
			windowEnd := time.Now().UTC()

			txs, err := w.Store.TransactionsSince(ctx, cursor)
			if err != nil {
				log.Printf("❌ Ledger export: failed to read transactions: %v", err)
				continue
			}
			if len(txs) == 0 {
				continue
			}

			var buf bytes.Buffer
			cw := csv.NewWriter(&buf)
			_ = cw.Write([]string{"id", "wallet_id", "tx_type", "amount", "balance_before", "balance_after", "user_id", "tx_hash", "description", "created_at"})
			for _, tx := range txs {
				_ = cw.Write([]string{
					tx.ID,
					tx.WalletID,
					string(tx.TxType),
					tx.Amount.StringFixed(6),
					tx.BalanceBefore.StringFixed(6),
					tx.BalanceAfter.StringFixed(6),
					tx.UserID,
					tx.TxHash,
					tx.Description,
					tx.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				log.Printf("❌ Ledger export: CSV encode failed: %v", err)
				continue
			}

			key := fmt.Sprintf("ledger-exports/%s.csv", windowEnd.Format("2006-01-02T15-04-05Z"))
			if err := utils.UploadBytesToR2(ctx, key, "text/csv", buf.Bytes()); err != nil {
				log.Printf("❌ Ledger export: upload failed: %v", err)
				// Do NOT advance the cursor — retry the same window next tick.
				continue
			}

			cursor = windowEnd
			log.Printf("✅ Ledger export: uploaded %d transaction(s) to %s", len(txs), key)
		}
	}
}
