package models

import "time"

// Developer is a developer-portal account stored in the app database.
type Developer struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"not null"`
	DisplayName  string     `json:"displayName"`
	IsActive     bool       `json:"isActive" gorm:"not null;default:true"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Developer) TableName() string {
	return "dev_users"
}
