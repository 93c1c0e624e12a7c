package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "Active"
	StatusInactive  AccountStatus = "Inactive"
	StatusSuspended AccountStatus = "Suspended"
)

// RoleSuperadmin is the role given to accounts created from the developer portal.
const RoleSuperadmin = "superadmin"

// Account is a tenant administrator ("superuser") in the CRM database.
type Account struct {
	ID            int64             `json:"id" gorm:"column:superuser_id;primaryKey"`
	CenterID      int64             `json:"centerId" gorm:"column:center_id;not null;index"`
	Center        *Center           `json:"-" gorm:"foreignKey:CenterID;references:ID"`
	Username      string            `json:"username" gorm:"not null;uniqueIndex"`
	Email         *string           `json:"email" gorm:"uniqueIndex"`
	PasswordHash  string            `json:"-" gorm:"not null"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Phone         string            `json:"phone"`
	Role          string            `json:"role" gorm:"not null;default:superadmin"`
	Status        AccountStatus     `json:"status" gorm:"not null;default:Active"`
	IsLocked      bool              `json:"isLocked" gorm:"not null;default:false"`
	LockedUntil   *time.Time        `json:"lockedUntil"`
	LoginAttempts int               `json:"loginAttempts" gorm:"not null;default:0"`
	LastLogin     *time.Time        `json:"lastLogin"`
	Permissions   datatypes.JSONMap `json:"-"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (Account) TableName() string {
	return "superusers"
}

// DisplayName joins first and last name, falling back to the login name.
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{a.FirstName, a.LastName}, " "))
	if name == "" {
		return a.Username
	}
	return name
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// LockActive reports whether the lock still holds at now. A lock without an expiry never lapses.
func (a *Account) LockActive(now time.Time) bool {
	if !a.IsLocked {
		return false
	}
	return a.LockedUntil == nil || a.LockedUntil.After(now)
}

func (a *Account) PlatformAccess() PlatformAccess {
	return DerivePlatformAccess(a.Permissions)
}

func (a *Account) Plan() string {
	return PlanOf(a.Permissions)
}

// Center is a tenant ("edu center"). Every Account belongs to exactly one.
type Center struct {
	ID            int64     `json:"id" gorm:"column:center_id;primaryKey"`
	Name          string    `json:"name" gorm:"column:center_name;not null"`
	Code          string    `json:"code" gorm:"column:center_code;not null;uniqueIndex"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PrincipalName string    `json:"principalName"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Center) TableName() string {
	return "edu_centers"
}

// AccountStats summarises superuser accounts for the developer portal.
type AccountStats struct {
	TotalAdmins  int64 `json:"totalAdmins"`
	ActiveAdmins int64 `json:"activeAdmins"`
	LockedAdmins int64 `json:"lockedAdmins"`
	TotalCenters int64 `json:"totalCenters"`
}
