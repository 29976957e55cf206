package models

import "gorm.io/gorm"

// PurchaseMarker records the date of a successful regular purchase.
// Markers form an append-only log; the most recent row wins on read, so
// history is never lost to an in-place update.
type PurchaseMarker struct {
	gorm.Model
	Date string `gorm:"not null" json:"date"` // YYYY-MM-DD
}
