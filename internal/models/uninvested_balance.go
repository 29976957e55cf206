package models

import "gorm.io/gorm"

// UninvestedBalance records the part of a period's budget that a cycle did
// not spend. Several rows may exist for one period key; totals are summed.
type UninvestedBalance struct {
	gorm.Model
	PeriodKey string  `gorm:"index;not null" json:"period_key"` // MM-YYYY
	AsOfDate  string  `gorm:"not null" json:"as_of_date"`       // YYYY-MM-DD
	Amount    float64 `gorm:"not null" json:"amount"`
}
