// Package ledger is the durable, append-only record of completed purchases,
// uninvested remainders and purchase-date markers. It is the only writer of
// those tables; rows are created once and never updated or deleted.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"coinbase-dca-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrPersistence marks a ledger storage fault. A persistence failure after
// a confirmed fill means the ledger is missing a purchase that happened;
// callers must surface it loudly.
var ErrPersistence = errors.New("ledger persistence failure")

const dateLayout = "2006-01-02"

// Entry describes one completed purchase to record.
type Entry struct {
	OrderID        string
	InvestedAmount decimal.Decimal
	AssetPurchased decimal.Decimal
	UnitPrice      decimal.Decimal
	ExecutedAt     time.Time
	Type           string
}

// Ledger wraps the database with the ledger operations. All operations are
// synchronous and assume a single writer.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a Ledger on top of an opened database.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger.Named("ledger")}
}

// RecordTransaction appends one completed purchase. Callers guarantee at
// most one call per order id; the unique index backs that up.
func (l *Ledger) RecordTransaction(e Entry) error {
	if e.OrderID == "" {
		return fmt.Errorf("order id must not be empty")
	}
	if e.InvestedAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("invested amount must be positive, got %s", e.InvestedAmount)
	}

	row := models.Transaction{
		OrderID:        e.OrderID,
		InvestedAmount: e.InvestedAmount.InexactFloat64(),
		AssetPurchased: e.AssetPurchased.InexactFloat64(),
		UnitPrice:      e.UnitPrice.InexactFloat64(),
		ExecutedAt:     e.ExecutedAt,
		Type:           e.Type,
	}
	if err := l.db.Create(&row).Error; err != nil {
		return fmt.Errorf("%w: record transaction %s: %v", ErrPersistence, e.OrderID, err)
	}

	l.logger.Info("Transaction recorded",
		zap.String("order_id", e.OrderID),
		zap.String("invested_amount", e.InvestedAmount.String()),
		zap.String("transaction_type", e.Type),
	)
	return nil
}

// RecordUninvested appends the remainder of a period's budget that this
// cycle did not spend.
func (l *Ledger) RecordUninvested(periodKey, asOfDate string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("uninvested amount must not be negative, got %s", amount)
	}

	row := models.UninvestedBalance{
		PeriodKey: periodKey,
		AsOfDate:  asOfDate,
		Amount:    amount.InexactFloat64(),
	}
	if err := l.db.Create(&row).Error; err != nil {
		return fmt.Errorf("%w: record uninvested balance for %s: %v", ErrPersistence, periodKey, err)
	}
	return nil
}

// LastPurchaseDate returns the date of the most recent regular purchase, or
// ok=false when no purchase has been recorded yet. Markers are append-only;
// the newest row wins.
func (l *Ledger) LastPurchaseDate() (string, bool, error) {
	var marker models.PurchaseMarker
	err := l.db.Order("id DESC").First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read last purchase date: %v", ErrPersistence, err)
	}
	return marker.Date, true, nil
}

// SetLastPurchaseDate appends a new purchase-date marker.
func (l *Ledger) SetLastPurchaseDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid purchase date %q: %w", date, err)
	}
	if err := l.db.Create(&models.PurchaseMarker{Date: date}).Error; err != nil {
		return fmt.Errorf("%w: set last purchase date: %v", ErrPersistence, err)
	}
	return nil
}

// AverageCostBasis returns the quantity-weighted average purchase price
// across all transactions, or ok=false when nothing has been purchased.
func (l *Ledger) AverageCostBasis() (decimal.Decimal, bool, error) {
	var rows []models.Transaction
	if err := l.db.Find(&rows).Error; err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: load transactions: %v", ErrPersistence, err)
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, row := range rows {
		qty := decimal.NewFromFloat(row.AssetPurchased)
		totalQty = totalQty.Add(qty)
		totalCost = totalCost.Add(qty.Mul(decimal.NewFromFloat(row.UnitPrice)))
	}

	if totalQty.IsZero() {
		return decimal.Zero, false, nil
	}
	return totalCost.Div(totalQty), true, nil
}

// MostRecentTransactionDate returns the execution time of the latest
// recorded purchase, or ok=false when the ledger is empty.
func (l *Ledger) MostRecentTransactionDate() (time.Time, bool, error) {
	var row models.Transaction
	err := l.db.Order("executed_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: read most recent transaction: %v", ErrPersistence, err)
	}
	return row.ExecutedAt, true, nil
}

// UninvestedTotal sums the uninvested remainders recorded for one period.
func (l *Ledger) UninvestedTotal(periodKey string) (decimal.Decimal, error) {
	var total float64
	err := l.db.Model(&models.UninvestedBalance{}).
		Where("period_key = ?", periodKey).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: sum uninvested balances for %s: %v", ErrPersistence, periodKey, err)
	}
	return decimal.NewFromFloat(total), nil
}

// UninvestedGrandTotal sums the uninvested remainders across all periods.
func (l *Ledger) UninvestedGrandTotal() (decimal.Decimal, error) {
	var total float64
	err := l.db.Model(&models.UninvestedBalance{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: sum uninvested balances: %v", ErrPersistence, err)
	}
	return decimal.NewFromFloat(total), nil
}
