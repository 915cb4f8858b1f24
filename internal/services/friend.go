package services

import (
	"errors"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/logger"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

const (
	msgSelfFriend       = "You cannot send a friend request to yourself."
	msgFriendshipExists = "Friendship already exists or is pending."
	msgFriendNotFound   = "Friendship not found."
)

// FriendService keeps one row per unordered pair of users.
type FriendService struct {
	db   *gorm.DB
	gate *AccessGate
}

func NewFriendService(db *gorm.DB, gate *AccessGate) *FriendService {
	return &FriendService{db: db, gate: gate}
}

type FriendRequest struct {
	FriendID uint `json:"friendId" binding:"required"`
}

func (s *FriendService) SendRequest(requesterID, addresseeID uint) error {
	if requesterID == addresseeID {
		return response.NewBadRequest(msgSelfFriend)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", addresseeID).Count(&count).Error; err != nil {
		return internalError("friend request: lookup user", err)
	}
	if count == 0 {
		return response.NewNotFound(msgUserNotFound)
	}

	one, two := models.CanonicalPair(requesterID, addresseeID)
	if err := s.db.Model(&models.Friendship{}).
		Where("user_one_id = ? AND user_two_id = ?", one, two).
		Count(&count).Error; err != nil {
		return internalError("friend request: lookup pair", err)
	}
	if count > 0 {
		return response.NewConflict(msgFriendshipExists)
	}

	f := &models.Friendship{
		UserOneID:    one,
		UserTwoID:    two,
		Status:       models.FriendshipPending,
		ActionUserID: requesterID,
	}
	if err := s.db.Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.NewConflict(msgFriendshipExists)
		}
		return internalError("friend request: insert", err)
	}
	return nil
}

// Accept marks a pending pair as accepted. Only the party who did not send
// the request can accept it. Accepting a row that is absent, already
// accepted, or one's own outgoing request is a no-op success.
func (s *FriendService) Accept(userID, friendID uint) error {
	one, two := models.CanonicalPair(userID, friendID)
	result := s.db.Model(&models.Friendship{}).
		Where("user_one_id = ? AND user_two_id = ? AND status = ? AND action_user_id <> ?",
			one, two, models.FriendshipPending, userID).
		Updates(map[string]interface{}{
			"status":         models.FriendshipAccepted,
			"action_user_id": userID,
		})
	if result.Error != nil {
		return internalError("friend accept", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Debug().Uint("user_id", userID).Uint("friend_id", friendID).Msg("friend accept changed no rows")
	}
	return nil
}

// Remove deletes the pair in any state, covering decline and unfriend.
func (s *FriendService) Remove(userID, friendID uint) error {
	one, two := models.CanonicalPair(userID, friendID)
	result := s.db.Where("user_one_id = ? AND user_two_id = ?", one, two).Delete(&models.Friendship{})
	if result.Error != nil {
		return internalError("friend remove", result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound(msgFriendNotFound)
	}
	return nil
}

func (s *FriendService) ListFriends(callerID, userID uint) ([]models.PublicUser, error) {
	if err := s.gate.RequireSelf(callerID, userID, "list_friends"); err != nil {
		return nil, err
	}

	friends := []models.PublicUser{}
	err := s.db.Table("friendships f").
		Select("u.id, u.username, u.email").
		Joins("JOIN users u ON u.id = CASE WHEN f.user_one_id = ? THEN f.user_two_id ELSE f.user_one_id END", userID).
		Where("(f.user_one_id = ? OR f.user_two_id = ?) AND f.status = ?", userID, userID, models.FriendshipAccepted).
		Order("u.username").
		Scan(&friends).Error
	if err != nil {
		return nil, internalError("list friends", err)
	}
	return friends, nil
}

// ListPendingIncoming returns requests addressed to userID, excluding the ones they sent.
func (s *FriendService) ListPendingIncoming(userID uint) ([]models.PublicUser, error) {
	requesters := []models.PublicUser{}
	err := s.db.Table("friendships f").
		Select("u.id, u.username, u.email").
		Joins("JOIN users u ON u.id = f.action_user_id").
		Where("(f.user_one_id = ? OR f.user_two_id = ?) AND f.status = ? AND f.action_user_id <> ?",
			userID, userID, models.FriendshipPending, userID).
		Order("f.created_at DESC").
		Scan(&requesters).Error
	if err != nil {
		return nil, internalError("list pending friends", err)
	}
	return requesters, nil
}
