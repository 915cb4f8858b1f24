package models

import (
	"time"
)

// User is an account. Verification fields are cleared once the email is confirmed.
type User struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	Email                    string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username                 string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password                 string     `gorm:"size:255;not null" json:"-"` // bcrypt hash
	IsVerified               bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken        *string    `gorm:"uniqueIndex;size:64" json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`
	AvatarURL                string     `gorm:"size:500" json:"avatar_url"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PublicUser is the identity shape exposed to other users.
type PublicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
