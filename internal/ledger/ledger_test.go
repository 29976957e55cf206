package ledger

import (
	"testing"
	"time"

	"coinbase-dca-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedger(t *testing.T) *Ledger {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Transaction{}, &models.UninvestedBalance{}, &models.PurchaseMarker{}))
	return New(db, zap.NewNop())
}

func entry(orderID string, qty, price float64) Entry {
	return Entry{
		OrderID:        orderID,
		InvestedAmount: decimal.NewFromFloat(qty * price),
		AssetPurchased: decimal.NewFromFloat(qty),
		UnitPrice:      decimal.NewFromFloat(price),
		ExecutedAt:     time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Type:           models.TransactionRegular,
	}
}

func TestRecordTransaction(t *testing.T) {
	l := setupLedger(t)

	err := l.RecordTransaction(entry("order-1", 0.005, 50000))
	assert.NoError(t, err)

	var row models.Transaction
	require.NoError(t, l.db.First(&row).Error)
	assert.Equal(t, "order-1", row.OrderID)
	assert.InDelta(t, 250.0, row.InvestedAmount, 1e-9)
	assert.InDelta(t, 0.005, row.AssetPurchased, 1e-9)
	assert.Equal(t, models.TransactionRegular, row.Type)
}

func TestRecordTransaction_RejectsEmptyOrderID(t *testing.T) {
	l := setupLedger(t)

	err := l.RecordTransaction(entry("", 0.005, 50000))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPersistence)
}

func TestRecordTransaction_RejectsNonPositiveAmount(t *testing.T) {
	l := setupLedger(t)

	e := entry("order-1", 0.005, 50000)
	e.InvestedAmount = decimal.Zero
	assert.Error(t, l.RecordTransaction(e))
}

func TestRecordTransaction_DuplicateOrderIDIsPersistenceFault(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.RecordTransaction(entry("order-1", 0.005, 50000)))

	err := l.RecordTransaction(entry("order-1", 0.004, 51000))
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestLastPurchaseDate(t *testing.T) {
	l := setupLedger(t)

	_, ok, err := l.LastPurchaseDate()
	require.NoError(t, err)
	assert.False(t, ok, "empty ledger has no marker")

	require.NoError(t, l.SetLastPurchaseDate("2024-03-14"))
	require.NoError(t, l.SetLastPurchaseDate("2024-03-15"))

	date, ok, err := l.LastPurchaseDate()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", date, "newest marker wins")
}

func TestSetLastPurchaseDate_RejectsMalformedDate(t *testing.T) {
	l := setupLedger(t)

	assert.Error(t, l.SetLastPurchaseDate("15-03-2024"))
	assert.Error(t, l.SetLastPurchaseDate("not a date"))
}

func TestAverageCostBasis(t *testing.T) {
	l := setupLedger(t)

	_, ok, err := l.AverageCostBasis()
	require.NoError(t, err)
	assert.False(t, ok, "empty ledger has no cost basis")

	require.NoError(t, l.RecordTransaction(entry("order-1", 1, 100)))
	require.NoError(t, l.RecordTransaction(entry("order-2", 1, 200)))

	avg, ok, err := l.AverageCostBasis()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, avg.Equal(decimal.NewFromInt(150)), "got %s", avg)
}

func TestAverageCostBasis_Weighted(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.RecordTransaction(entry("order-1", 3, 100)))
	require.NoError(t, l.RecordTransaction(entry("order-2", 1, 200)))

	avg, ok, err := l.AverageCostBasis()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, avg.Equal(decimal.NewFromInt(125)), "got %s", avg)
}

func TestMostRecentTransactionDate(t *testing.T) {
	l := setupLedger(t)

	_, ok, err := l.MostRecentTransactionDate()
	require.NoError(t, err)
	assert.False(t, ok)

	older := entry("order-1", 1, 100)
	older.ExecutedAt = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	newer := entry("order-2", 1, 100)
	newer.ExecutedAt = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.RecordTransaction(older))
	require.NoError(t, l.RecordTransaction(newer))

	got, ok, err := l.MostRecentTransactionDate()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(newer.ExecutedAt), "got %s", got)
}

func TestRecordUninvested(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.RecordUninvested("03-2024", "2024-03-01", decimal.NewFromInt(750)))
	require.NoError(t, l.RecordUninvested("03-2024", "2024-03-15", decimal.NewFromInt(500)))
	require.NoError(t, l.RecordUninvested("04-2024", "2024-04-01", decimal.NewFromInt(100)))

	total, err := l.UninvestedTotal("03-2024")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1250)), "got %s", total)

	grand, err := l.UninvestedGrandTotal()
	require.NoError(t, err)
	assert.True(t, grand.Equal(decimal.NewFromInt(1350)), "got %s", grand)
}

func TestRecordUninvested_RejectsNegativeAmount(t *testing.T) {
	l := setupLedger(t)

	err := l.RecordUninvested("03-2024", "2024-03-01", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestUninvestedTotal_EmptyPeriodIsZero(t *testing.T) {
	l := setupLedger(t)

	total, err := l.UninvestedTotal("01-2030")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}
