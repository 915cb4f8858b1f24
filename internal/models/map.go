package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// TravelMap is a shared map. Only its creator may rename or delete it.
type TravelMap struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedBy uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (TravelMap) TableName() string { return "maps" }

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
)

var (
	ErrInvalidMembership = errors.New("invalid membership role/status combination")
	ErrNotPending        = errors.New("membership is not pending")
)

// MapMembership links a user to a map. Valid states are owner/accepted,
// member/pending and member/accepted; the only transition is Accept.
type MapMembership struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	MapID     uint             `gorm:"uniqueIndex:idx_map_user;not null" json:"map_id"`
	UserID    uint             `gorm:"uniqueIndex:idx_map_user;index;not null" json:"user_id"`
	Role      MemberRole       `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Status    MembershipStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InvitedBy uint             `gorm:"not null" json:"invited_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Map  *TravelMap `gorm:"foreignKey:MapID" json:"-"`
	User *User      `gorm:"foreignKey:UserID" json:"-"`
}

func (MapMembership) TableName() string { return "map_members" }

// NewOwnerMembership is the creator's own row, accepted from the start.
func NewOwnerMembership(mapID, ownerID uint) *MapMembership {
	return &MapMembership{
		MapID:     mapID,
		UserID:    ownerID,
		Role:      RoleOwner,
		Status:    MembershipAccepted,
		InvitedBy: ownerID,
	}
}

// NewInvitation is a pending member row awaiting the invitee's answer.
func NewInvitation(mapID, userID, inviterID uint) *MapMembership {
	return &MapMembership{
		MapID:     mapID,
		UserID:    userID,
		Role:      RoleMember,
		Status:    MembershipPending,
		InvitedBy: inviterID,
	}
}

func (m *MapMembership) IsPending() bool  { return m.Status == MembershipPending }
func (m *MapMembership) IsAccepted() bool { return m.Status == MembershipAccepted }

// Accept moves a pending invitation to accepted.
func (m *MapMembership) Accept() error {
	if !m.IsPending() {
		return ErrNotPending
	}
	m.Status = MembershipAccepted
	return nil
}

// Valid reports whether the role/status pair is one of the allowed states.
func (m *MapMembership) Valid() bool {
	switch m.Role {
	case RoleOwner:
		return m.Status == MembershipAccepted
	case RoleMember:
		return m.Status == MembershipPending || m.Status == MembershipAccepted
	}
	return false
}

func (m *MapMembership) BeforeCreate(_ *gorm.DB) error {
	if !m.Valid() {
		return ErrInvalidMembership
	}
	return nil
}
