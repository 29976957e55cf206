// Package risk evaluates stop-loss, take-profit and drawdown thresholds for
// the signal-driven trading loop.
package risk

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Guard holds the configured risk thresholds as fractions. The price and
// trigger computations are pure; only the drawdown tracking carries state.
type Guard struct {
	stopLoss    decimal.Decimal
	takeProfit  decimal.Decimal
	maxDrawdown decimal.Decimal

	initialBalance decimal.Decimal
	currentBalance decimal.Decimal
	hasInitial     bool
}

// NewGuard creates a Guard from percent thresholds (10 means 10%).
func NewGuard(stopLossPct, takeProfitPct, maxDrawdownPct float64) *Guard {
	return &Guard{
		stopLoss:    decimal.NewFromFloat(stopLossPct).Div(hundred),
		takeProfit:  decimal.NewFromFloat(takeProfitPct).Div(hundred),
		maxDrawdown: decimal.NewFromFloat(maxDrawdownPct).Div(hundred),
	}
}

// StopLossPrice returns the price below the purchase price at which the
// stop-loss threshold sits.
func (g *Guard) StopLossPrice(purchasePrice decimal.Decimal) decimal.Decimal {
	return purchasePrice.Mul(decimal.NewFromInt(1).Sub(g.stopLoss))
}

// TakeProfitPrice returns the price above the purchase price at which the
// take-profit threshold sits.
func (g *Guard) TakeProfitPrice(purchasePrice decimal.Decimal) decimal.Decimal {
	return purchasePrice.Mul(decimal.NewFromInt(1).Add(g.takeProfit))
}

// ShouldStopLoss reports whether the loss against the purchase price
// strictly exceeds the stop-loss threshold. A loss exactly at the threshold
// does not trigger.
func (g *Guard) ShouldStopLoss(currentPrice, purchasePrice decimal.Decimal) bool {
	if purchasePrice.IsZero() {
		return false
	}
	loss := purchasePrice.Sub(currentPrice).Div(purchasePrice)
	return loss.GreaterThan(g.stopLoss)
}

// ShouldTakeProfit reports whether the gain against the purchase price
// strictly exceeds the take-profit threshold.
func (g *Guard) ShouldTakeProfit(currentPrice, purchasePrice decimal.Decimal) bool {
	if purchasePrice.IsZero() {
		return false
	}
	profit := currentPrice.Sub(purchasePrice).Div(purchasePrice)
	return profit.GreaterThan(g.takeProfit)
}

// SetInitialBalance establishes the reference balance for drawdown checks.
func (g *Guard) SetInitialBalance(balance decimal.Decimal) {
	g.initialBalance = balance
	g.currentBalance = balance
	g.hasInitial = true
}

// UpdateBalance records the latest balance.
func (g *Guard) UpdateBalance(balance decimal.Decimal) {
	g.currentBalance = balance
}

// DrawdownExceeded reports whether the decline from the initial balance
// strictly exceeds the maximum drawdown threshold.
func (g *Guard) DrawdownExceeded() bool {
	if !g.hasInitial || g.initialBalance.IsZero() {
		return false
	}
	drawdown := g.initialBalance.Sub(g.currentBalance).Div(g.initialBalance)
	return drawdown.GreaterThan(g.maxDrawdown)
}
