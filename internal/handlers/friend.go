package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/pkg/response"
)

type FriendHandler struct {
	friendService *services.FriendService
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// List returns the user's accepted friends
// GET /api/friends/:userId
func (h *FriendHandler) List(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	friends, err := h.friendService.ListFriends(middleware.GetUserID(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, friends)
}

// Pending returns the friend requests waiting on the caller
// GET /api/friends/pending/me
func (h *FriendHandler) Pending(c *gin.Context) {
	requests, err := h.friendService.ListPendingIncoming(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, requests)
}

// Request sends a friend request to another user
// POST /api/friends/request
func (h *FriendHandler) Request(c *gin.Context) {
	var req services.FriendRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.friendService.SendRequest(middleware.GetUserID(c), req.FriendID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Friend request sent.")
}

// Accept confirms a friend request sent to the caller
// PUT /api/friends/accept
func (h *FriendHandler) Accept(c *gin.Context) {
	var req services.FriendRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.friendService.Accept(middleware.GetUserID(c), req.FriendID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Friend request accepted.")
}

// Remove deletes a friendship or pending request
// POST /api/friends/remove
func (h *FriendHandler) Remove(c *gin.Context) {
	var req services.FriendRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.friendService.Remove(middleware.GetUserID(c), req.FriendID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Friendship removed.")
}
