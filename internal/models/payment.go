package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is a charge against a unit. Amount is in whole currency units.
type Payment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UnitID      uint          `gorm:"index;not null" json:"unitId"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Period      string        `gorm:"size:50;not null" json:"period"` // e.g. "1402-01"
	Status      PaymentStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Description *string       `gorm:"size:255" json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
