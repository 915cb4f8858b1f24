package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/pkg/response"
)

type MarkerHandler struct {
	markerService *services.MarkerService
}

func NewMarkerHandler(markerService *services.MarkerService) *MarkerHandler {
	return &MarkerHandler{markerService: markerService}
}

// ListAll returns every marker the user owns
// GET /api/markers/user/:userId/all
func (h *MarkerHandler) ListAll(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	markers, err := h.markerService.GetAllUserMarkers(middleware.GetUserID(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, markers)
}

// ListPersonal returns the user's markers flagged as personal
// GET /api/markers/user/:userId/personal
func (h *MarkerHandler) ListPersonal(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	markers, err := h.markerService.GetPersonalMarkers(middleware.GetUserID(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, markers)
}

// ListForMap returns the markers linked to a map the caller belongs to
// GET /api/markers/map/:mapId
func (h *MarkerHandler) ListForMap(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	markers, err := h.markerService.GetMarkersForSharedMap(middleware.GetUserID(c), mapID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, markers)
}

// MapIDs lists the maps a marker is linked to
// GET /api/markers/:markerId/maps
func (h *MarkerHandler) MapIDs(c *gin.Context) {
	markerID, ok := uintParam(c, "markerId")
	if !ok {
		return
	}
	ids, err := h.markerService.GetMapIDsForMarker(middleware.GetUserID(c), markerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}

// Create saves a new marker and links it to the requested maps
// POST /api/markers
func (h *MarkerHandler) Create(c *gin.Context) {
	var req services.SaveMarkerRequest
	if !bindJSON(c, &req) {
		return
	}
	marker, err := h.markerService.SaveMarker(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, marker)
}

// Update edits a marker owned by the caller
// PUT /api/markers/:markerId
func (h *MarkerHandler) Update(c *gin.Context) {
	markerID, ok := uintParam(c, "markerId")
	if !ok {
		return
	}
	var req services.UpdateMarkerRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.markerService.UpdateMarker(middleware.GetUserID(c), markerID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Marker updated.")
}

// UpdateMapLinks replaces the set of maps a marker is linked to
// PUT /api/markers/:markerId/map-links
func (h *MarkerHandler) UpdateMapLinks(c *gin.Context) {
	markerID, ok := uintParam(c, "markerId")
	if !ok {
		return
	}
	var req services.UpdateMarkerLinksRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.markerService.UpdateMapLinks(middleware.GetUserID(c), markerID, req.NewMapIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Marker map links updated.")
}

// Delete removes a marker and its map links
// DELETE /api/markers/:markerId
func (h *MarkerHandler) Delete(c *gin.Context) {
	markerID, ok := uintParam(c, "markerId")
	if !ok {
		return
	}
	if err := h.markerService.DeleteMarker(middleware.GetUserID(c), markerID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Marker deleted.")
}
