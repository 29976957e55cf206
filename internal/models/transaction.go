package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction type tags. Regular purchases are driven by the schedule,
// extraordinary ones by the price-drop check.
const (
	TransactionRegular       = "regular"
	TransactionExtraordinary = "extraordinary"
)

// Transaction represents one completed purchase recorded in the ledger.
// Rows are written once after a confirmed fill and never updated.
type Transaction struct {
	gorm.Model
	OrderID        string    `gorm:"uniqueIndex;not null" json:"order_id"`
	InvestedAmount float64   `gorm:"not null" json:"invested_amount"`
	AssetPurchased float64   `json:"asset_purchased"`
	UnitPrice      float64   `json:"unit_price"`
	ExecutedAt     time.Time `json:"executed_at"`
	Type           string    `json:"transaction_type"`
}
