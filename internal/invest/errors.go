package invest

import "errors"

// Cycle failure classes. All of them abort the cycle without retry; the
// next scheduled trigger gets a fresh attempt with a fresh client order id.
var (
	// ErrInsufficientFunds means the fiat balance was absent or smaller
	// than the sized amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOrderTimeout means polling gave up before a terminal state was
	// observed. The order may still have filled; reconcile manually.
	ErrOrderTimeout = errors.New("order not completed in the expected time frame")

	// ErrOrderNotFilled means the brokerage reached a terminal state other
	// than filled (cancelled, expired or failed).
	ErrOrderNotFilled = errors.New("order reached a terminal state without filling")
)
