package services

import (
	"strings"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

// MarkerService owns markers and their visibility links into maps.
type MarkerService struct {
	db   *gorm.DB
	gate *AccessGate
}

func NewMarkerService(db *gorm.DB, gate *AccessGate) *MarkerService {
	return &MarkerService{db: db, gate: gate}
}

type SaveMarkerRequest struct {
	Latitude      *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Title         string   `json:"title" binding:"required,max=255"`
	Description   string   `json:"description"`
	Ranking       *float64 `json:"ranking" binding:"required,min=0,max=10"`
	Category      string   `json:"category" binding:"required,max=100"`
	TripName      string   `json:"trip_name" binding:"required,max=200"`
	IsPersonal    *bool    `json:"isPersonal" binding:"required"`
	MapIDsToShare []uint   `json:"mapIdsToShare"`
}

type UpdateMarkerRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Ranking     *float64 `json:"ranking" binding:"required,min=0,max=10"`
	Category    string   `json:"category" binding:"required,max=100"`
	TripName    string   `json:"trip_name" binding:"required,max=200"`
}

type UpdateMarkerLinksRequest struct {
	NewMapIDs []uint `json:"newMapIds"`
}

func validateCoordinates(lat, lng *float64) error {
	switch {
	case lat == nil || *lat < -90 || *lat > 90:
		return response.NewBadRequest("Latitude must be between -90 and 90.")
	case lng == nil || *lng < -180 || *lng > 180:
		return response.NewBadRequest("Longitude must be between -180 and 180.")
	}
	return nil
}

func validateDetails(title string, ranking *float64) error {
	switch {
	case strings.TrimSpace(title) == "":
		return response.NewBadRequest("Title is required.")
	case ranking == nil || *ranking < 0 || *ranking > 10:
		return response.NewBadRequest("Ranking must be between 0 and 10.")
	}
	return nil
}

// SaveMarker creates a marker and shares it to the requested maps. Maps the
// owner is not an accepted member of are dropped, as in UpdateMapLinks.
func (s *MarkerService) SaveMarker(ownerID uint, req *SaveMarkerRequest) (*models.Marker, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if err := validateDetails(req.Title, req.Ranking); err != nil {
		return nil, err
	}

	m := &models.Marker{
		UserID:      ownerID,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Ranking:     *req.Ranking,
		Category:    req.Category,
		TripName:    req.TripName,
		IsPersonal:  req.IsPersonal != nil && *req.IsPersonal,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		mapIDs, err := acceptedMapIDs(tx, ownerID, req.MapIDsToShare)
		if err != nil {
			return err
		}
		return insertLinks(tx, markerLinks(m.ID, mapIDs))
	})
	if err != nil {
		return nil, internalError("save marker", err)
	}
	return m, nil
}

func (s *MarkerService) UpdateMarker(callerID, markerID uint, req *UpdateMarkerRequest) error {
	if err := validateDetails(req.Title, req.Ranking); err != nil {
		return err
	}
	m, err := s.gate.RequireMarkerOwner(markerID, callerID, "update_marker")
	if err != nil {
		return err
	}

	err = s.db.Model(m).Updates(map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"ranking":     *req.Ranking,
		"category":    req.Category,
		"trip_name":   req.TripName,
	}).Error
	if err != nil {
		return internalError("update marker", err)
	}
	return nil
}

// DeleteMarker removes the marker's links before the marker itself.
func (s *MarkerService) DeleteMarker(callerID, markerID uint) error {
	if _, err := s.gate.RequireMarkerOwner(markerID, callerID, "delete_marker"); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("marker_id = ?", markerID).Delete(&models.MapMarkerLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", markerID).Delete(&models.Marker{}).Error
	})
	if err != nil {
		return internalError("delete marker", err)
	}
	return nil
}

// UpdateMapLinks replaces the marker's full link set. Maps the caller is not
// an accepted member of are silently left out.
func (s *MarkerService) UpdateMapLinks(callerID, markerID uint, mapIDs []uint) error {
	if _, err := s.gate.RequireMarkerOwner(markerID, callerID, "update_marker_links"); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("marker_id = ?", markerID).Delete(&models.MapMarkerLink{}).Error; err != nil {
			return err
		}
		allowed, err := acceptedMapIDs(tx, callerID, mapIDs)
		if err != nil {
			return err
		}
		return insertLinks(tx, markerLinks(markerID, allowed))
	})
	if err != nil {
		return internalError("update marker links", err)
	}
	return nil
}

func (s *MarkerService) GetAllUserMarkers(callerID, userID uint) ([]models.Marker, error) {
	if err := s.gate.RequireSelf(callerID, userID, "list_all_markers"); err != nil {
		return nil, err
	}
	markers := []models.Marker{}
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&markers).Error; err != nil {
		return nil, internalError("list markers", err)
	}
	return markers, nil
}

func (s *MarkerService) GetPersonalMarkers(callerID, userID uint) ([]models.Marker, error) {
	if err := s.gate.RequireSelf(callerID, userID, "list_personal_markers"); err != nil {
		return nil, err
	}
	markers := []models.Marker{}
	if err := s.db.Where("user_id = ? AND is_personal = ?", userID, true).
		Order("created_at DESC").Find(&markers).Error; err != nil {
		return nil, internalError("list personal markers", err)
	}
	return markers, nil
}

// GetMarkersForSharedMap lists every marker linked to mapID with its owner.
func (s *MarkerService) GetMarkersForSharedMap(callerID, mapID uint) ([]models.MarkerView, error) {
	if err := s.gate.RequireAcceptedMember(mapID, callerID, "list_map_markers"); err != nil {
		return nil, err
	}

	views := []models.MarkerView{}
	err := s.db.Table("markers m").
		Select("m.*, u.username, u.avatar_url").
		Joins("JOIN map_markers mm ON mm.marker_id = m.id").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("mm.map_id = ?", mapID).
		Order("m.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, internalError("list map markers", err)
	}
	return views, nil
}

func (s *MarkerService) GetMapIDsForMarker(callerID, markerID uint) ([]uint, error) {
	if _, err := s.gate.RequireMarkerOwner(markerID, callerID, "marker_map_ids"); err != nil {
		return nil, err
	}
	ids := []uint{}
	if err := s.db.Model(&models.MapMarkerLink{}).
		Where("marker_id = ?", markerID).
		Order("map_id").
		Pluck("map_id", &ids).Error; err != nil {
		return nil, internalError("marker map ids", err)
	}
	return ids, nil
}

// acceptedMapIDs filters mapIDs down to maps userID is an accepted member of.
func acceptedMapIDs(db *gorm.DB, userID uint, mapIDs []uint) ([]uint, error) {
	mapIDs = uniqueIDs(mapIDs)
	if len(mapIDs) == 0 {
		return nil, nil
	}
	var allowed []uint
	err := db.Model(&models.MapMembership{}).
		Where("user_id = ? AND status = ? AND map_id IN ?", userID, models.MembershipAccepted, mapIDs).
		Pluck("map_id", &allowed).Error
	return allowed, err
}

func markerLinks(markerID uint, mapIDs []uint) []models.MapMarkerLink {
	links := make([]models.MapMarkerLink, 0, len(mapIDs))
	for _, id := range mapIDs {
		links = append(links, models.MapMarkerLink{MapID: id, MarkerID: markerID})
	}
	return links
}
