// Package trader runs the secondary signal-driven trading loop: indicator
// crossover signals decide entries and exits, and the risk guard can force a
// liquidation ahead of the signals.
package trader

import (
	"context"
	"fmt"
	"time"

	"coinbase-dca-bot-go/internal/coinbase"
	"coinbase-dca-bot-go/internal/config"
	"coinbase-dca-bot-go/internal/invest"
	"coinbase-dca-bot-go/internal/marketdata"
	"coinbase-dca-bot-go/internal/risk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bot is the signal-driven trading loop. It shares the order lifecycle with
// the investment cycle (submit once, track to a terminal state) but keeps
// its position reference in memory instead of the ledger.
type Bot struct {
	logger  *zap.Logger
	cfg     *config.Config
	client  coinbase.ClientInterface
	guard   *risk.Guard
	tracker *invest.Tracker

	lastPurchasePrice *decimal.Decimal

	newOrderID func() string
}

// NewBot creates a Bot.
func NewBot(logger *zap.Logger, cfg *config.Config, client coinbase.ClientInterface, guard *risk.Guard) *Bot {
	return &Bot{
		logger:     logger.Named("trader"),
		cfg:        cfg,
		client:     client,
		guard:      guard,
		tracker:    invest.NewTracker(client, logger),
		newOrderID: uuid.NewString,
	}
}

// Run starts the trading loop and blocks until the context is cancelled.
// Tick failures are logged; the loop keeps going.
func (b *Bot) Run(ctx context.Context) {
	interval := time.Duration(b.cfg.Trading.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.logger.Info("Starting trading loop", zap.Duration("interval", interval))

	if balance, err := b.client.FiatBalance(ctx); err == nil {
		b.guard.SetInitialBalance(balance)
	} else {
		b.logger.Warn("Could not read initial balance for drawdown tracking", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping trading loop...")
			return
		case <-ticker.C:
			if err := b.tick(ctx); err != nil {
				b.logger.Error("Trading tick failed", zap.Error(err))
			}
		}
	}
}

// tick evaluates the latest signal and the risk guard once.
func (b *Bot) tick(ctx context.Context) error {
	closes, err := b.client.DailyCloses(ctx, b.cfg.Trading.HistoryDays)
	if err != nil {
		return fmt.Errorf("could not fetch price history: %w", err)
	}

	trading := b.cfg.Trading
	signal, ok := marketdata.LatestSignal(closes, trading.ShortWindow, trading.LongWindow, trading.RSIPeriod, trading.RSIThreshold)
	if ok {
		b.logger.Info("Trading signal fired", zap.String("action", string(signal.Action)))
		switch signal.Action {
		case marketdata.ActionBuy:
			if err := b.placeBuy(ctx); err != nil {
				b.logger.Error("Buy failed", zap.Error(err))
			}
		case marketdata.ActionSell:
			if b.lastPurchasePrice != nil {
				if err := b.sellAll(ctx); err != nil {
					b.logger.Error("Sell failed", zap.Error(err))
				}
			}
		}
	}

	return b.applyRiskGuard(ctx)
}

// applyRiskGuard liquidates the position when the current price breaches
// the stop-loss or take-profit threshold against the entry price, and
// tracks the drawdown of the fiat balance.
func (b *Bot) applyRiskGuard(ctx context.Context) error {
	if balance, err := b.client.FiatBalance(ctx); err == nil {
		b.guard.UpdateBalance(balance)
		if b.guard.DrawdownExceeded() {
			b.logger.Warn("Maximum drawdown limit reached. Consider stopping trades.")
		}
	}

	if b.lastPurchasePrice == nil {
		return nil
	}

	current, err := b.client.SpotPrice(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch spot price: %w", err)
	}

	entry := *b.lastPurchasePrice
	if b.guard.ShouldStopLoss(current, entry) {
		b.logger.Warn("Stop loss triggered",
			zap.String("current", current.String()),
			zap.String("entry", entry.String()),
		)
		return b.sellAll(ctx)
	}
	if b.guard.ShouldTakeProfit(current, entry) {
		b.logger.Info("Take profit triggered",
			zap.String("current", current.String()),
			zap.String("entry", entry.String()),
		)
		return b.sellAll(ctx)
	}
	return nil
}

// placeBuy submits a fixed-quote market buy and tracks it to completion.
// The entry price is taken from the authoritative fill details, and a
// protective stop-loss order is placed below it.
func (b *Bot) placeBuy(ctx context.Context) error {
	quote := decimal.NewFromFloat(b.cfg.Trading.OrderQuote)
	if quote.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("trading order quote is not configured")
	}

	balance, err := b.client.FiatBalance(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch fiat balance: %w", err)
	}
	if balance.LessThan(quote) {
		return fmt.Errorf("%w: available %s, required %s", invest.ErrInsufficientFunds, balance, quote)
	}

	outcome, err := b.client.CreateOrder(ctx, b.newOrderID(), coinbase.SideBuy, quote)
	if err != nil {
		return fmt.Errorf("buy submission failed: %w", err)
	}
	if outcome.Kind != coinbase.OutcomeSuccess {
		return fmt.Errorf("buy order %s: %s%s", outcome.Kind, outcome.Reason, outcome.Message)
	}

	details, err := b.awaitFill(ctx, outcome.OrderID)
	if err != nil {
		return err
	}

	price := details.AverageFilledPrice
	b.lastPurchasePrice = &price
	b.logger.Info("Buy order filled",
		zap.String("order_id", outcome.OrderID),
		zap.String("price", price.String()),
		zap.String("size", details.FilledSize.String()),
	)

	b.placeProtectiveStop(ctx, details.FilledSize, price)
	return nil
}

// placeProtectiveStop places a stop-limit sell below the entry price. A
// failure here is logged only: the in-process guard still covers the exit.
func (b *Bot) placeProtectiveStop(ctx context.Context, baseSize, entryPrice decimal.Decimal) {
	if baseSize.LessThanOrEqual(decimal.Zero) {
		return
	}

	stopPrice := b.guard.StopLossPrice(entryPrice).Round(2)
	// Limit a little under the stop so the order can actually fill.
	limitPrice := stopPrice.Mul(decimal.NewFromFloat(0.995)).Round(2)

	outcome, err := b.client.CreateStopOrder(ctx, b.newOrderID(), baseSize, stopPrice, limitPrice, coinbase.StopDirectionDown)
	if err != nil {
		b.logger.Warn("Protective stop order submission failed", zap.Error(err))
		return
	}
	if outcome.Kind != coinbase.OutcomeSuccess {
		b.logger.Warn("Protective stop order was not accepted",
			zap.String("outcome", outcome.Kind.String()),
			zap.String("reason", outcome.Reason),
		)
		return
	}
	b.logger.Info("Protective stop order placed",
		zap.String("order_id", outcome.OrderID),
		zap.String("stop_price", stopPrice.String()),
	)
}

// sellAll liquidates the entire asset balance with a market sell.
func (b *Bot) sellAll(ctx context.Context) error {
	held, err := b.client.AssetBalance(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch asset balance: %w", err)
	}
	if held.LessThanOrEqual(decimal.Zero) {
		b.logger.Info("No holdings to sell.")
		b.lastPurchasePrice = nil
		return nil
	}

	outcome, err := b.client.CreateOrder(ctx, b.newOrderID(), coinbase.SideSell, held)
	if err != nil {
		return fmt.Errorf("sell submission failed: %w", err)
	}
	if outcome.Kind != coinbase.OutcomeSuccess {
		return fmt.Errorf("sell order %s: %s%s", outcome.Kind, outcome.Reason, outcome.Message)
	}

	if _, err := b.awaitFill(ctx, outcome.OrderID); err != nil {
		return err
	}

	b.logger.Info("Sold all holdings", zap.String("order_id", outcome.OrderID), zap.String("size", held.String()))
	b.lastPurchasePrice = nil
	return nil
}

// awaitFill tracks an order to a terminal state and fetches its
// authoritative fill details.
func (b *Bot) awaitFill(ctx context.Context, orderID string) (*coinbase.OrderDetails, error) {
	timeout := time.Duration(b.cfg.Investment.OrderTimeout) * time.Second
	interval := time.Duration(b.cfg.Investment.PollInterval) * time.Second

	state := b.tracker.AwaitTerminalState(ctx, orderID, timeout, interval)
	switch state {
	case invest.StateFilled:
	case invest.StateTimedOut:
		return nil, fmt.Errorf("order %s: %w", orderID, invest.ErrOrderTimeout)
	default:
		return nil, fmt.Errorf("order %s ended %s: %w", orderID, state, invest.ErrOrderNotFilled)
	}

	details, err := b.client.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch fill details for %s: %w", orderID, err)
	}
	return details, nil
}
