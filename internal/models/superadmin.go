package models

import "time"

// CreateSuperAdminRequest creates a tenant and its first administrator.
type CreateSuperAdminRequest struct {
	FirstName      string         `json:"firstName" validate:"required,max=100"`
	LastName       string         `json:"lastName" validate:"required,max=100"`
	Username       string         `json:"username" validate:"required,min=3,max=50"`
	Email          string         `json:"email" validate:"omitempty,email,max=255"`
	Password       string         `json:"password" validate:"required,min=6,max=72"`
	CompanyName    string         `json:"companyName" validate:"required,max=200"`
	City           string         `json:"city" validate:"max=100"`
	Phone          string         `json:"phone" validate:"max=30"`
	Plan           string         `json:"plan" validate:"max=50"`
	PlatformAccess PlatformAccess `json:"platformAccess"`
}

// UpdateSuperAdminRequest is a partial update; nil fields are left alone.
type UpdateSuperAdminRequest struct {
	PlatformAccess *PlatformAccessPatch `json:"platformAccess"`
	Status         *AccountStatus       `json:"status" validate:"omitempty,oneof=Active Inactive Suspended"`
	Plan           *string              `json:"plan" validate:"omitempty,min=1,max=50"`
	IsLocked       *bool                `json:"isLocked"`
	LockedUntil    *time.Time           `json:"lockedUntil"`
}

func (r UpdateSuperAdminRequest) Empty() bool {
	return (r.PlatformAccess == nil || r.PlatformAccess.Empty()) &&
		r.Status == nil && r.Plan == nil && r.IsLocked == nil && r.LockedUntil == nil
}

// SuperAdmin is the developer-portal view of an Account joined with its center.
type SuperAdmin struct {
	ID             int64          `json:"id"`
	Username       string         `json:"username"`
	Email          *string        `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Role           string         `json:"role"`
	Status         AccountStatus  `json:"status"`
	IsLocked       bool           `json:"isLocked"`
	LockedUntil    *time.Time     `json:"lockedUntil"`
	LoginAttempts  int            `json:"loginAttempts"`
	LastLogin      *time.Time     `json:"lastLogin"`
	CreatedAt      time.Time      `json:"createdAt"`
	CenterID       int64          `json:"centerId"`
	CenterName     string         `json:"centerName"`
	City           string         `json:"city"`
	Plan           string         `json:"plan"`
	PlatformAccess PlatformAccess `json:"platformAccess"`
}

func NewSuperAdmin(a *Account) SuperAdmin {
	view := SuperAdmin{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Role:           a.Role,
		Status:         a.Status,
		IsLocked:       a.IsLocked,
		LockedUntil:    a.LockedUntil,
		LoginAttempts:  a.LoginAttempts,
		LastLogin:      a.LastLogin,
		CreatedAt:      a.CreatedAt,
		CenterID:       a.CenterID,
		Plan:           a.Plan(),
		PlatformAccess: a.PlatformAccess(),
	}
	if view.Plan == "" {
		view.Plan = DefaultPlan
	}
	if a.Center != nil {
		view.CenterName = a.Center.Name
		view.City = a.Center.City
	}
	return view
}
