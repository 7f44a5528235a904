package models

import "errors"

var (
	// ErrStaleBalance is returned by the wallet store when a conditional
	// balance update loses a race with a concurrent writer. Callers retry
	// the read-compute-write cycle.
	ErrStaleBalance = errors.New("wallet balance changed concurrently")

	// ErrWalletNotFound indicates a wallet id that does not exist. Hitting
	// this inside RecordTransaction is a programming error, not user input.
	ErrWalletNotFound = errors.New("wallet not found")
)
