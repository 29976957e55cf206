package invest

import (
	"context"
	"time"

	"coinbase-dca-bot-go/internal/coinbase"
	"go.uber.org/zap"
)

// Tracker polls an order until it reaches a terminal state or the polling
// budget runs out.
type Tracker struct {
	client coinbase.ClientInterface
	logger *zap.Logger
}

// NewTracker creates a Tracker.
func NewTracker(client coinbase.ClientInterface, logger *zap.Logger) *Tracker {
	return &Tracker{client: client, logger: logger.Named("tracker")}
}

// AwaitTerminalState polls the order status on a fixed interval until a
// terminal brokerage state is observed or timeout elapses, in which case it
// returns StateTimedOut. A failed status fetch is no new information: it is
// logged and polling continues, so one dropped check cannot turn an order
// that actually filled into a false negative.
func (t *Tracker) AwaitTerminalState(ctx context.Context, orderID string, timeout, interval time.Duration) OrderState {
	log := t.logger.With(zap.String("order_id", orderID))
	log.Info("Waiting for order completion", zap.Duration("timeout", timeout), zap.Duration("interval", interval))

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		details, err := t.client.GetOrder(ctx, orderID)
		if err != nil {
			log.Warn("Order status check failed, retrying", zap.Error(err))
		} else {
			state := stateFromStatus(details.Status)
			log.Debug("Checked order status", zap.String("status", details.Status), zap.String("state", state.String()))
			if state.Terminal() {
				return state
			}
		}

		select {
		case <-ctx.Done():
			log.Warn("Context cancelled while waiting for order completion")
			return StateTimedOut
		case <-deadline.C:
			log.Warn("Timeout reached, order may not have completed")
			return StateTimedOut
		case <-ticker.C:
		}
	}
}
