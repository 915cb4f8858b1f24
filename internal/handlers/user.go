package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/pkg/response"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/:userId
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	user, err := h.userService.SearchUserByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// PUT /api/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.ChangePassword(middleware.GetUserID(c), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Password updated successfully.")
}

// DELETE /api/users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.userService.DeleteAccount(middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Account deleted successfully.")
}

// UploadAvatar accepts a multipart "avatar" file
// POST /api/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "No file uploaded.")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Could not read uploaded file.")
		return
	}
	defer src.Close()

	url, err := h.userService.UploadAvatar(c.Request.Context(), middleware.GetUserID(c),
		file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"avatar_url": url})
}
