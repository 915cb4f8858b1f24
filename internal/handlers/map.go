package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/pkg/response"
)

type MapHandler struct {
	mapService *services.MapService
}

func NewMapHandler(mapService *services.MapService) *MapHandler {
	return &MapHandler{mapService: mapService}
}

// ListForUser returns the maps the user is an accepted member of
// GET /api/maps/user/:userId
func (h *MapHandler) ListForUser(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	maps, err := h.mapService.ListMapsForUser(middleware.GetUserID(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, maps)
}

// Members lists the accepted members of a map
// GET /api/maps/:mapId/members
func (h *MapHandler) Members(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	members, err := h.mapService.ListMembers(mapID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

// Invitations returns the caller's pending map invitations
// GET /api/maps/invitations/me
func (h *MapHandler) Invitations(c *gin.Context) {
	invitations, err := h.mapService.ListPendingInvitations(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitations)
}

// UserMarkers returns the ids of a member's markers linked to the map
// GET /api/maps/:mapId/user-markers/:userId
func (h *MapHandler) UserMarkers(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	ids, err := h.mapService.LinkedMarkerIDsForUser(middleware.GetUserID(c), mapID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ids)
}

// Create makes a shared map and invites the chosen friend
// POST /api/maps/create
func (h *MapHandler) Create(c *gin.Context) {
	var req services.CreateMapRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.mapService.CreateMapAndInvite(middleware.GetUserID(c), req.MapName, req.FriendID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

// AcceptInvitation joins the caller to the invited map
// POST /api/maps/invitations/accept
func (h *MapHandler) AcceptInvitation(c *gin.Context) {
	var req services.InvitationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mapService.AcceptInvitation(middleware.GetUserID(c), req.MapUserID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Invitation accepted.")
}

// DeclineInvitation drops a pending map invitation
// POST /api/maps/invitations/decline
func (h *MapHandler) DeclineInvitation(c *gin.Context) {
	var req services.InvitationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mapService.DeclineInvitation(middleware.GetUserID(c), req.MapUserID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Invitation declined.")
}

// Rename changes a map's title
// PUT /api/maps/:mapId/rename
func (h *MapHandler) Rename(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	var req services.RenameMapRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mapService.RenameMap(middleware.GetUserID(c), mapID, req.NewName); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Map renamed.")
}

// UpdateUserMarkers sets which of the caller's markers are linked to the map
// PUT /api/maps/:mapId/user-markers
func (h *MapHandler) UpdateUserMarkers(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	var req services.UpdateMapMarkersRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mapService.UpdateMarkersForMap(middleware.GetUserID(c), mapID, req.SelectedMarkerIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Map markers updated.")
}

// Delete removes a map with its memberships and links
// DELETE /api/maps/:mapId
func (h *MapHandler) Delete(c *gin.Context) {
	mapID, ok := uintParam(c, "mapId")
	if !ok {
		return
	}
	if err := h.mapService.DeleteMap(middleware.GetUserID(c), mapID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Map deleted.")
}
