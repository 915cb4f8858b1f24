package services

import (
	"errors"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/logger"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

const (
	msgNotYourData      = "You can only access your own data."
	msgNotMapMember     = "You are not a member of this map."
	msgNotMapCreator    = "Only the map creator can do this."
	msgNotMarkerOwner   = "You do not own this marker."
	msgInvitationDenied = "Invitation not found or not for you."
)

// AccessGate answers "may caller touch this resource". A missing resource
// and someone else's resource both come back as Forbidden.
type AccessGate struct {
	db    *gorm.DB
	audit *SystemLogService
}

func NewAccessGate(db *gorm.DB, audit *SystemLogService) *AccessGate {
	return &AccessGate{db: db, audit: audit}
}

// RequireSelf allows a caller to read only their own per-user listings.
func (g *AccessGate) RequireSelf(caller, target uint, action string) error {
	if caller == target {
		return nil
	}
	return g.deny(caller, action, msgNotYourData, map[string]interface{}{"target_user_id": target})
}

// IsAcceptedMember reports whether userID holds an accepted membership on mapID.
func (g *AccessGate) IsAcceptedMember(db *gorm.DB, mapID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.MapMembership{}).
		Where("map_id = ? AND user_id = ? AND status = ?", mapID, userID, models.MembershipAccepted).
		Count(&count).Error
	return count > 0, err
}

func (g *AccessGate) RequireAcceptedMember(mapID, caller uint, action string) error {
	ok, err := g.IsAcceptedMember(g.db, mapID, caller)
	if err != nil {
		return internalError(action+": membership check", err)
	}
	if !ok {
		return g.deny(caller, action, msgNotMapMember, map[string]interface{}{"map_id": mapID})
	}
	return nil
}

func (g *AccessGate) RequireMapCreator(mapID, caller uint, action string) (*models.TravelMap, error) {
	var m models.TravelMap
	err := g.db.First(&m, mapID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError(action+": load map", err)
	}
	if err != nil || m.CreatedBy != caller {
		return nil, g.deny(caller, action, msgNotMapCreator, map[string]interface{}{"map_id": mapID})
	}
	return &m, nil
}

func (g *AccessGate) RequireMarkerOwner(markerID, caller uint, action string) (*models.Marker, error) {
	var m models.Marker
	err := g.db.First(&m, markerID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError(action+": load marker", err)
	}
	if err != nil || m.UserID != caller {
		return nil, g.deny(caller, action, msgNotMarkerOwner, map[string]interface{}{"marker_id": markerID})
	}
	return &m, nil
}

// deny records the violation and returns the Forbidden error for it.
func (g *AccessGate) deny(caller uint, action, msg string, extra map[string]interface{}) error {
	logger.Warn().Uint("caller", caller).Str("action", action).Interface("extra", extra).Msg("security violation")
	g.audit.LogWarning("access", action, msg, &caller, "", extra)
	return response.NewForbidden(msg)
}
