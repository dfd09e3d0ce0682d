package models

import "time"

type SenderType string

const (
	SenderAdmin    SenderType = "admin"
	SenderResident SenderType = "resident"
)

// SenderTypeFor maps a role onto the chat sender category.
func SenderTypeFor(role UserRole) SenderType {
	if role == RoleResident {
		return SenderResident
	}
	return SenderAdmin
}

type Message struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UnitID     uint       `gorm:"index;not null" json:"unitId"`
	SenderType SenderType `gorm:"size:20;not null" json:"senderType"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	IsRead     bool       `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time  `json:"createdAt"`
}
