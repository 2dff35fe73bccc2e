package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Module is a billable course unit with an hourly pay rate.
// Codes are stored uppercased so uniqueness is case-insensitive.
type Module struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"hourly_rate"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	Claims     []Claim         `json:"-"`
}
