package services

import (
	"errors"
	"strings"
	"time"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgMapTitleRequired = "Map name is required."
	msgInviteSelf       = "You cannot invite yourself to your own map."
)

// MapService owns maps, their memberships and invitations.
type MapService struct {
	db   *gorm.DB
	gate *AccessGate
}

func NewMapService(db *gorm.DB, gate *AccessGate) *MapService {
	return &MapService{db: db, gate: gate}
}

type CreateMapRequest struct {
	MapName  string `json:"mapName" binding:"required,max=255"`
	FriendID uint   `json:"friendId" binding:"required"`
}

type InvitationRequest struct {
	MapUserID uint `json:"mapUserId" binding:"required"`
}

type RenameMapRequest struct {
	NewName string `json:"newName" binding:"required,max=255"`
}

type UpdateMapMarkersRequest struct {
	SelectedMarkerIDs []uint `json:"selectedMarkerIds"`
}

// MapSummary is a map as seen by one of its accepted members.
type MapSummary struct {
	ID        uint              `json:"id"`
	Title     string            `json:"title"`
	CreatedBy uint              `json:"created_by"`
	Role      models.MemberRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
}

type MemberView struct {
	User models.PublicUser `json:"user"`
	Role models.MemberRole `json:"role"`
}

type InvitationView struct {
	MapUserID         uint   `json:"map_user_id"`
	MapID             uint   `json:"map_id"`
	Title             string `json:"title"`
	InvitedByUsername string `json:"invited_by_username"`
}

// CreateMapAndInvite creates the map with its owner membership and a pending
// invitation for friendID, all or nothing.
func (s *MapService) CreateMapAndInvite(ownerID uint, title string, friendID uint) (*models.TravelMap, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, response.NewBadRequest(msgMapTitleRequired)
	}
	if friendID == ownerID {
		return nil, response.NewBadRequest(msgInviteSelf)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", friendID).Count(&count).Error; err != nil {
		return nil, internalError("create map: lookup invitee", err)
	}
	if count == 0 {
		return nil, response.NewNotFound(msgUserNotFound)
	}

	m := &models.TravelMap{Title: title, CreatedBy: ownerID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := tx.Create(models.NewOwnerMembership(m.ID, ownerID)).Error; err != nil {
			return err
		}
		return tx.Create(models.NewInvitation(m.ID, friendID, ownerID)).Error
	})
	if err != nil {
		return nil, internalError("create map", err)
	}
	return m, nil
}

// loadInvitation returns the membership only if it belongs to userID.
func (s *MapService) loadInvitation(userID, membershipID uint, action string) (*models.MapMembership, error) {
	var mm models.MapMembership
	err := s.db.First(&mm, membershipID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError(action+": lookup", err)
	}
	if err != nil || mm.UserID != userID {
		return nil, s.gate.deny(userID, action, msgInvitationDenied, map[string]interface{}{"map_user_id": membershipID})
	}
	return &mm, nil
}

func (s *MapService) AcceptInvitation(userID, membershipID uint) error {
	mm, err := s.loadInvitation(userID, membershipID, "accept_invitation")
	if err != nil {
		return err
	}
	if err := mm.Accept(); err != nil {
		return s.gate.deny(userID, "accept_invitation", msgInvitationDenied, map[string]interface{}{"map_user_id": membershipID})
	}

	result := s.db.Model(&models.MapMembership{}).
		Where("id = ? AND user_id = ? AND status = ?", mm.ID, userID, models.MembershipPending).
		Update("status", mm.Status)
	if result.Error != nil {
		return internalError("accept invitation", result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NewForbidden(msgInvitationDenied)
	}
	return nil
}

// DeclineInvitation deletes the caller's membership in any status.
func (s *MapService) DeclineInvitation(userID, membershipID uint) error {
	mm, err := s.loadInvitation(userID, membershipID, "decline_invitation")
	if err != nil {
		return err
	}
	result := s.db.Where("id = ? AND user_id = ?", mm.ID, userID).Delete(&models.MapMembership{})
	if result.Error != nil {
		return internalError("decline invitation", result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NewForbidden(msgInvitationDenied)
	}
	return nil
}

func (s *MapService) ListMapsForUser(callerID, userID uint) ([]MapSummary, error) {
	if err := s.gate.RequireSelf(callerID, userID, "list_maps"); err != nil {
		return nil, err
	}

	maps := []MapSummary{}
	err := s.db.Table("maps m").
		Select("m.id, m.title, m.created_by, mm.role, m.created_at").
		Joins("JOIN map_members mm ON mm.map_id = m.id").
		Where("mm.user_id = ? AND mm.status = ?", userID, models.MembershipAccepted).
		Order("m.created_at DESC").
		Scan(&maps).Error
	if err != nil {
		return nil, internalError("list maps", err)
	}
	return maps, nil
}

func (s *MapService) ListMembers(mapID, callerID uint) ([]MemberView, error) {
	if err := s.gate.RequireAcceptedMember(mapID, callerID, "list_members"); err != nil {
		return nil, err
	}

	var rows []struct {
		ID        uint
		Username  string
		Email     string
		AvatarURL string
		Role      models.MemberRole
	}
	err := s.db.Table("map_members mm").
		Select("u.id, u.username, u.email, u.avatar_url, mm.role").
		Joins("JOIN users u ON u.id = mm.user_id").
		Where("mm.map_id = ? AND mm.status = ?", mapID, models.MembershipAccepted).
		Order("mm.id").
		Scan(&rows).Error
	if err != nil {
		return nil, internalError("list members", err)
	}

	members := make([]MemberView, 0, len(rows))
	for _, r := range rows {
		members = append(members, MemberView{
			User: models.PublicUser{ID: r.ID, Username: r.Username, Email: r.Email, AvatarURL: r.AvatarURL},
			Role: r.Role,
		})
	}
	return members, nil
}

func (s *MapService) ListPendingInvitations(userID uint) ([]InvitationView, error) {
	invitations := []InvitationView{}
	err := s.db.Table("map_members mm").
		Select("mm.id AS map_user_id, m.id AS map_id, m.title, u.username AS invited_by_username").
		Joins("JOIN maps m ON m.id = mm.map_id").
		Joins("JOIN users u ON u.id = mm.invited_by").
		Where("mm.user_id = ? AND mm.status = ?", userID, models.MembershipPending).
		Order("mm.created_at DESC").
		Scan(&invitations).Error
	if err != nil {
		return nil, internalError("list invitations", err)
	}
	return invitations, nil
}

func (s *MapService) RenameMap(callerID, mapID uint, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return response.NewBadRequest(msgMapTitleRequired)
	}
	m, err := s.gate.RequireMapCreator(mapID, callerID, "rename_map")
	if err != nil {
		return err
	}
	if err := s.db.Model(m).Update("title", title).Error; err != nil {
		return internalError("rename map", err)
	}
	return nil
}

// DeleteMap removes memberships, then marker links, then the map.
func (s *MapService) DeleteMap(callerID, mapID uint) error {
	if _, err := s.gate.RequireMapCreator(mapID, callerID, "delete_map"); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("map_id = ?", mapID).Delete(&models.MapMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("map_id = ?", mapID).Delete(&models.MapMarkerLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", mapID).Delete(&models.TravelMap{}).Error
	})
	if err != nil {
		return internalError("delete map", err)
	}
	return nil
}

// UpdateMarkersForMap replaces the set of the caller's own markers shown on
// mapID. Ids the caller does not own are ignored.
func (s *MapService) UpdateMarkersForMap(callerID, mapID uint, selected []uint) error {
	if err := s.gate.RequireAcceptedMember(mapID, callerID, "update_map_markers"); err != nil {
		return err
	}
	selected = uniqueIDs(selected)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ownMarkers := tx.Model(&models.Marker{}).Select("id").Where("user_id = ?", callerID)
		if err := tx.Where("map_id = ? AND marker_id IN (?)", mapID, ownMarkers).
			Delete(&models.MapMarkerLink{}).Error; err != nil {
			return err
		}
		if len(selected) == 0 {
			return nil
		}

		var owned []uint
		if err := tx.Model(&models.Marker{}).
			Where("user_id = ? AND id IN ?", callerID, selected).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		return insertLinks(tx, mapLinks(mapID, owned))
	})
	if err != nil {
		return internalError("update map markers", err)
	}
	return nil
}

// LinkedMarkerIDsForUser returns ids of userID's own markers linked to mapID.
func (s *MapService) LinkedMarkerIDsForUser(callerID, mapID, userID uint) ([]uint, error) {
	if err := s.gate.RequireSelf(callerID, userID, "linked_marker_ids"); err != nil {
		return nil, err
	}

	ids := []uint{}
	err := s.db.Table("map_markers mm").
		Joins("JOIN markers m ON m.id = mm.marker_id").
		Where("mm.map_id = ? AND m.user_id = ?", mapID, userID).
		Order("mm.marker_id").
		Pluck("mm.marker_id", &ids).Error
	if err != nil {
		return nil, internalError("linked marker ids", err)
	}
	return ids, nil
}

func mapLinks(mapID uint, markerIDs []uint) []models.MapMarkerLink {
	links := make([]models.MapMarkerLink, 0, len(markerIDs))
	for _, id := range markerIDs {
		links = append(links, models.MapMarkerLink{MapID: mapID, MarkerID: id})
	}
	return links
}

// insertLinks is an insert-or-ignore on the (map_id, marker_id) key.
func insertLinks(tx *gorm.DB, links []models.MapMarkerLink) error {
	if len(links) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}
