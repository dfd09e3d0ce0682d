package models

import "time"

type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "active"
	UnitStatusInactive UnitStatus = "inactive"
)

type Unit struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UnitNumber string     `gorm:"size:50;not null" json:"unitNumber"`
	Floor      int        `gorm:"not null" json:"floor"`
	Status     UnitStatus `gorm:"size:20;not null;default:active" json:"status"`
	ResidentID *uint      `gorm:"index" json:"residentId"`
	CreatedAt  time.Time  `json:"createdAt"`
}
