package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered customer or an administrator.
// Users are never hard-deleted; IsActive=false disables login.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"not null" json:"name"`
	Phone           string     `gorm:"not null" json:"phone"`
	PasswordHash    string     `gorm:"not null" json:"-"`
	Role            string     `gorm:"not null;default:user" json:"role"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt"`
	IsActive        bool       `gorm:"not null;default:true" json:"isActive"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}
