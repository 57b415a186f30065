package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;not null;unique;uniqueIndex:idx_user_username_email" json:"email"`
	Username  string    `gorm:"size:150;not null;unique;uniqueIndex:idx_user_username_email" json:"username"`
	FirstName string    `gorm:"size:150;not null" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Password  string    `gorm:"size:128;not null" json:"-"` // bcrypt hash
	IsAdmin   bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Filled per viewer, not stored.
	IsSubscribed bool `gorm:"-" json:"is_subscribed"`
}
