package models

import "gorm.io/gorm"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a storefront account.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null"             json:"-"`
	Role     string `gorm:"size:20;not null;default:user" json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
