package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/internal/utils"
	"github.com/travelit/backend/pkg/logger"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UserService struct {
	db        *gorm.DB
	images    ImageStore
	maxAvatar int64
}

func NewUserService(db *gorm.DB, images ImageStore, maxAvatarBytes int64) *UserService {
	return &UserService{db: db, images: images, maxAvatar: maxAvatarBytes}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// SearchUserByID returns the public identity of any user.
func (s *UserService) SearchUserByID(id uint) (*models.PublicUser, error) {
	var u models.PublicUser
	err := s.db.Model(&models.User{}).Select("id, username").Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internalError("search user", err)
	}
	return &u, nil
}

func (s *UserService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(msgUserNotFound)
	}
	if err != nil {
		return internalError("change password: lookup", err)
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewBadRequest("Incorrect old password")
	}
	if !utils.IsStrongPassword(req.NewPassword) {
		return response.NewBadRequest(msgWeakPassword)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return internalError("change password: hash", err)
	}
	if err := s.db.Model(&user).Update("password", hash).Error; err != nil {
		return internalError("change password: update", err)
	}
	return nil
}

// DeleteAccount removes the user and everything that references them.
func (s *UserService) DeleteAccount(userID uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return internalError("delete account: lookup", err)
	}
	if count == 0 {
		return response.NewNotFound(msgUserNotFound)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, userID)
	}); err != nil {
		return internalError("delete account", err)
	}
	logger.Info().Uint("user_id", userID).Msg("account deleted")
	return nil
}

// UploadAvatar stores the image and records its public URL on the user.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename, contentType string, size int64, r io.Reader) (string, error) {
	ext, ok := avatarTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", response.NewBadRequest("Only JPEG, PNG, GIF or WEBP images are allowed.")
	}
	if fileExt := strings.ToLower(filepath.Ext(filename)); fileExt == ".jpeg" || fileExt == ext {
		ext = fileExt
	}
	if size <= 0 {
		return "", response.NewBadRequest("No file uploaded.")
	}
	if s.maxAvatar > 0 && size > s.maxAvatar {
		return "", response.NewBadRequest("Image is too large.")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return "", internalError("avatar: lookup", err)
	}
	if count == 0 {
		return "", response.NewNotFound(msgUserNotFound)
	}

	// The declared type only gates the request; the stored extension follows
	// the sniffed content.
	r = io.LimitReader(r, size)
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", internalError("avatar: read", err)
	}
	head = head[:n]
	sniffed, ok := avatarTypes[http.DetectContentType(head)]
	if !ok {
		return "", response.NewBadRequest("Only JPEG, PNG, GIF or WEBP images are allowed.")
	}
	if ext != ".jpeg" || sniffed != ".jpg" {
		ext = sniffed
	}

	url, err := s.images.Save(ctx, ext, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return "", internalError("avatar: store", err)
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
		return "", internalError("avatar: update", err)
	}
	return url, nil
}

// deleteUserCascade removes every row that references the user, children
// first, then the user. Must run inside a transaction.
func deleteUserCascade(tx *gorm.DB, userID uint) error {
	ownMarkers := func() *gorm.DB {
		return tx.Model(&models.Marker{}).Select("id").Where("user_id = ?", userID)
	}
	ownMaps := func() *gorm.DB {
		return tx.Model(&models.TravelMap{}).Select("id").Where("created_by = ?", userID)
	}

	steps := []func() error{
		func() error { return tx.Where("marker_id IN (?)", ownMarkers()).Delete(&models.MapMarkerLink{}).Error },
		func() error { return tx.Where("user_id = ?", userID).Delete(&models.Marker{}).Error },
		func() error { return tx.Where("user_id = ?", userID).Delete(&models.MapMembership{}).Error },
		func() error {
			return tx.Where("user_one_id = ? OR user_two_id = ?", userID, userID).Delete(&models.Friendship{}).Error
		},
		func() error { return tx.Where("map_id IN (?)", ownMaps()).Delete(&models.MapMembership{}).Error },
		func() error { return tx.Where("map_id IN (?)", ownMaps()).Delete(&models.MapMarkerLink{}).Error },
		func() error { return tx.Where("created_by = ?", userID).Delete(&models.TravelMap{}).Error },
		func() error { return tx.Where("id = ?", userID).Delete(&models.User{}).Error },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
