// Package invest runs the end-to-end investment cycle: guard, sizing, funds
// check, order submission, completion tracking and ledgering.
package invest

import (
	"context"
	"fmt"
	"time"

	"coinbase-dca-bot-go/internal/coinbase"
	"coinbase-dca-bot-go/internal/config"
	"coinbase-dca-bot-go/internal/ledger"
	"coinbase-dca-bot-go/internal/models"
	"coinbase-dca-bot-go/internal/sentiment"
	"coinbase-dca-bot-go/internal/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dateLayout   = "2006-01-02"
	periodLayout = "01-2006"
)

// CycleStatus classifies how a cycle ended.
type CycleStatus int

const (
	// CycleCompleted: the purchase filled and was recorded.
	CycleCompleted CycleStatus = iota
	// CycleSkipped: nothing was submitted (guard hit or zero-sized amount).
	CycleSkipped
	// CycleAborted: the cycle stopped after sizing but before a recorded
	// purchase, or the recording itself failed.
	CycleAborted
)

func (s CycleStatus) String() string {
	switch s {
	case CycleCompleted:
		return "completed"
	case CycleSkipped:
		return "skipped"
	case CycleAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CycleResult is the structured outcome of one cycle. Failures never
// propagate past the orchestrator; the scheduler only ever sees this.
type CycleResult struct {
	Status  CycleStatus
	Reason  string
	Amount  decimal.Decimal
	OrderID string
	Err     error
}

// Orchestrator composes the strategy, the brokerage client, the completion
// tracker and the ledger into the investment cycle state machine.
type Orchestrator struct {
	logger    *zap.Logger
	cfg       *config.Config
	client    coinbase.ClientInterface
	sentiment sentiment.ClientInterface
	ledger    *ledger.Ledger
	tracker   *Tracker

	// injected for tests
	now        func() time.Time
	newOrderID func() string
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(logger *zap.Logger, cfg *config.Config, client coinbase.ClientInterface, sentimentClient sentiment.ClientInterface, led *ledger.Ledger) *Orchestrator {
	return &Orchestrator{
		logger:     logger.Named("invest"),
		cfg:        cfg,
		client:     client,
		sentiment:  sentimentClient,
		ledger:     led,
		tracker:    NewTracker(client, logger),
		now:        time.Now,
		newOrderID: uuid.NewString,
	}
}

func skipped(reason string) *CycleResult {
	return &CycleResult{Status: CycleSkipped, Reason: reason}
}

func aborted(reason string, err error) *CycleResult {
	return &CycleResult{Status: CycleAborted, Reason: reason, Err: err}
}

// ExecuteCycle runs one investment cycle of the given transaction type.
// Regular cycles are subject to the at-most-one-purchase-per-day guard;
// extraordinary (price-drop) cycles are not and may stack with a same-day
// regular purchase.
func (o *Orchestrator) ExecuteCycle(ctx context.Context, transactionType string) *CycleResult {
	log := o.logger.With(zap.String("transaction_type", transactionType))
	log.Info("Starting investment cycle")

	today := o.now().Format(dateLayout)

	if transactionType == models.TransactionRegular {
		last, ok, err := o.ledger.LastPurchaseDate()
		if err != nil {
			log.Error("Could not read last purchase date", zap.Error(err))
			return aborted("last purchase date unavailable", err)
		}
		if ok && last == today {
			log.Info("Already purchased today. Skipping the purchase.")
			return skipped("already purchased today")
		}
	}

	index, err := o.sentiment.FetchIndex(ctx)
	if err != nil {
		log.Error("Could not fetch sentiment index", zap.Error(err))
		return aborted("sentiment index unavailable", err)
	}

	amount := o.sizeInvestment(ctx, index, log)
	if amount.IsZero() {
		log.Info("Strategy sized this cycle at zero, skipping", zap.Int("sentiment_index", index))
		return skipped("strategy sized the cycle at zero")
	}
	log.Info("Sized investment amount", zap.Int("sentiment_index", index), zap.String("amount", amount.String()))

	balance, err := o.client.FiatBalance(ctx)
	if err != nil {
		log.Warn("Fiat balance unavailable", zap.Error(err))
		return aborted("insufficient funds", fmt.Errorf("%w: balance unavailable: %v", ErrInsufficientFunds, err))
	}
	if balance.LessThan(amount) {
		log.Warn("Not enough funds",
			zap.String("available", balance.String()),
			zap.String("required", amount.String()),
		)
		return aborted("insufficient funds", fmt.Errorf("%w: available %s, required %s", ErrInsufficientFunds, balance, amount))
	}

	// A fresh client order id per cycle makes resubmission after a crash a
	// new order rather than a duplicate of an unknown one.
	clientOrderID := o.newOrderID()
	outcome, err := o.client.CreateOrder(ctx, clientOrderID, coinbase.SideBuy, amount)
	if err != nil {
		log.Error("Buy order submission failed", zap.Error(err))
		return aborted("order submission failed", err)
	}
	if outcome.Kind != coinbase.OutcomeSuccess {
		log.Error("Buy order was not accepted",
			zap.String("outcome", outcome.Kind.String()),
			zap.String("reason", outcome.Reason),
			zap.String("message", outcome.Message),
		)
		reason := outcome.Reason
		if reason == "" {
			reason = outcome.Message
		}
		return aborted(fmt.Sprintf("order %s: %s", outcome.Kind, reason), nil)
	}

	timeout := time.Duration(o.cfg.Investment.OrderTimeout) * time.Second
	interval := time.Duration(o.cfg.Investment.PollInterval) * time.Second
	state := o.tracker.AwaitTerminalState(ctx, outcome.OrderID, timeout, interval)
	if state != StateFilled {
		if state == StateTimedOut {
			log.Error("Order was not completed in the expected time frame; its fate is unknown and must be reconciled manually",
				zap.String("order_id", outcome.OrderID))
			return &CycleResult{Status: CycleAborted, Reason: "order tracking timed out", OrderID: outcome.OrderID, Amount: amount, Err: ErrOrderTimeout}
		}
		log.Error("Order terminated without filling",
			zap.String("order_id", outcome.OrderID),
			zap.String("state", state.String()),
		)
		return &CycleResult{Status: CycleAborted, Reason: fmt.Sprintf("order %s", state), OrderID: outcome.OrderID, Amount: amount, Err: ErrOrderNotFilled}
	}

	// The poll loop's status check is lightweight; fill price and size for
	// the ledger come from a dedicated authoritative fetch.
	details, err := o.client.GetOrder(ctx, outcome.OrderID)
	if err != nil {
		log.Error("Failed to fetch order details for logging", zap.String("order_id", outcome.OrderID), zap.Error(err))
		return &CycleResult{Status: CycleAborted, Reason: "order details unavailable", OrderID: outcome.OrderID, Amount: amount, Err: err}
	}

	entry := ledger.Entry{
		OrderID:        outcome.OrderID,
		InvestedAmount: amount,
		AssetPurchased: details.FilledSize,
		UnitPrice:      details.AverageFilledPrice,
		ExecutedAt:     details.CreatedTime,
		Type:           transactionType,
	}
	if err := o.ledger.RecordTransaction(entry); err != nil {
		log.Error("Order filled but the transaction could not be recorded; the ledger is missing a confirmed purchase",
			zap.String("order_id", outcome.OrderID),
			zap.String("invested_amount", amount.String()),
			zap.Error(err),
		)
		return &CycleResult{Status: CycleAborted, Reason: "filled order not recorded", OrderID: outcome.OrderID, Amount: amount, Err: err}
	}

	if err := o.ledger.SetLastPurchaseDate(today); err != nil {
		// The transaction itself is recorded; a missing marker only risks a
		// duplicate guard miss, not lost funds.
		log.Error("Failed to update last purchase date", zap.Error(err))
	}

	monthlyLimit := decimal.NewFromFloat(o.cfg.Investment.MonthlyLimit)
	if amount.LessThan(monthlyLimit) {
		remainder := monthlyLimit.Sub(amount)
		periodKey := o.now().Format(periodLayout)
		if err := o.ledger.RecordUninvested(periodKey, today, remainder); err != nil {
			log.Error("Failed to record uninvested balance", zap.Error(err))
		} else {
			log.Info("Uninvested balance recorded",
				zap.String("period", periodKey),
				zap.String("amount", remainder.String()),
			)
		}
	}

	log.Info("Investment cycle completed",
		zap.String("order_id", outcome.OrderID),
		zap.String("invested_amount", amount.String()),
	)
	return &CycleResult{Status: CycleCompleted, OrderID: outcome.OrderID, Amount: amount}
}

// sizeInvestment runs the configured sizing algorithm. When the market
// timing variant cannot get recent price action it falls back to
// sentiment-only sizing rather than skipping the cycle.
func (o *Orchestrator) sizeInvestment(ctx context.Context, index int, log *zap.Logger) decimal.Decimal {
	monthlyLimit := decimal.NewFromFloat(o.cfg.Investment.MonthlyLimit)
	frequency := o.cfg.Investment.Frequency

	if o.cfg.Investment.Strategy == strategy.AlgorithmMarketTiming {
		change, err := o.client.WeeklyPriceChange(ctx)
		if err != nil {
			log.Warn("Weekly price change unavailable, falling back to sentiment-only sizing", zap.Error(err))
			return strategy.SentimentOnly(index, monthlyLimit, frequency)
		}
		return strategy.WithMarketTiming(index, change, monthlyLimit, frequency)
	}
	return strategy.SentimentOnly(index, monthlyLimit, frequency)
}

// CheckPriceDrop compares the current spot price with yesterday's close and
// triggers an extraordinary purchase when the drop meets the configured
// threshold. The check itself is read-only and idempotent.
func (o *Orchestrator) CheckPriceDrop(ctx context.Context) *CycleResult {
	current, err := o.client.SpotPrice(ctx)
	if err != nil {
		o.logger.Error("Failed to retrieve the current price", zap.Error(err))
		return aborted("current price unavailable", err)
	}

	previous, err := o.client.PreviousDayClose(ctx)
	if err != nil {
		o.logger.Error("Failed to retrieve the previous day's price", zap.Error(err))
		return aborted("previous day price unavailable", err)
	}
	if previous.IsZero() {
		return aborted("previous day price is zero", nil)
	}

	drop := previous.Sub(current).Div(previous).Mul(decimal.NewFromInt(100))
	o.logger.Info("Price drop check",
		zap.String("current", current.String()),
		zap.String("previous_close", previous.String()),
		zap.String("drop_pct", drop.StringFixed(2)),
	)

	threshold := decimal.NewFromFloat(o.cfg.Investment.DropThreshold)
	if drop.GreaterThanOrEqual(threshold) {
		o.logger.Info("Price drop exceeds the threshold. Executing investment.")
		return o.ExecuteCycle(ctx, models.TransactionExtraordinary)
	}

	return skipped("price drop below threshold")
}
