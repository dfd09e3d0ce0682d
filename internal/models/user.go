package models

import "time"

type UserRole string

const (
	RoleSuperAdmin    UserRole = "super_admin"
	RoleBuildingAdmin UserRole = "building_admin"
	RoleResident      UserRole = "resident"
)

// Valid reports whether r is one of the three known roles. Matching is exact.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleBuildingAdmin, RoleResident:
		return true
	}
	return false
}

// IsAdmin is true for both administrator roles.
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleBuildingAdmin
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null;index" json:"role"`
	UnitID       *uint     `gorm:"index" json:"unitId"` // nil for admins
	CreatedAt    time.Time `json:"createdAt"`
}
