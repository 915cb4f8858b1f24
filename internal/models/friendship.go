package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// FriendshipPending means a request has been sent but not yet accepted.
	FriendshipPending  FriendshipStatus = "pending"
	// FriendshipAccepted means both users are friends.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is stored once per unordered pair with UserOneID < UserTwoID.
// ActionUserID is whoever last changed the state (requester, then accepter).
type Friendship struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserOneID    uint             `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"user_one_id"`
	UserTwoID    uint             `gorm:"uniqueIndex:idx_friendship_pair;not null;index" json:"user_two_id"`
	Status       FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ActionUserID uint             `gorm:"not null" json:"action_user_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	UserOne *User `gorm:"foreignKey:UserOneID" json:"-"`
	UserTwo *User `gorm:"foreignKey:UserTwoID" json:"-"`
}

func (Friendship) TableName() string { return "friendships" }

// CanonicalPair orders two user ids as (min, max).
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// BeforeCreate keeps the pair canonical no matter how the row was built.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.UserOneID, f.UserTwoID = CanonicalPair(f.UserOneID, f.UserTwoID)
	return nil
}

// Other returns the counterpart of userID in the pair.
func (f *Friendship) Other(userID uint) uint {
	if f.UserOneID == userID {
		return f.UserTwoID
	}
	return f.UserOneID
}
