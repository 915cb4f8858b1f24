package services

import (
	"errors"
	"strings"
	"time"

	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/internal/utils"
	"github.com/travelit/backend/pkg/logger"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

const (
	verificationTTL = time.Hour
	tokenBytes      = 32

	msgUserExists        = "User with this email or username already exists."
	msgInvalidCreds      = "Invalid credentials."
	msgNotVerified       = "Please verify your email before logging in."
	msgWeakPassword      = "Password must be at least 8 characters long and contain at least one letter and one number."
	msgTokenInvalid      = "Invalid or already used verification token."
	msgTokenExpired      = "Verification token has expired. Please register again."
	msgUserNotFound      = "User not found."
	msgTokenRequired     = "Verification token is required."
	msgIdentifierMissing = "Username or email and password are required."
)

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	queue TaskQueue
	now   func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, queue TaskQueue) *AuthService {
	return &AuthService{db: db, cfg: cfg, queue: queue, now: time.Now}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Identifier string `json:"usernameOrEmail" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string             `json:"token"`
	ExpireAt time.Time          `json:"expire_at"`
	User     *models.PublicUser `json:"user"`
}

// Register creates an unverified account. Unverified accounts that collide on
// email or username are replaced; verified ones cause a Conflict.
func (s *AuthService) Register(req *RegisterRequest) error {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || len(username) < 3 {
		return response.NewBadRequest("A valid email and a username of at least 3 characters are required.")
	}
	if !utils.IsStrongPassword(req.Password) {
		return response.NewBadRequest(msgWeakPassword)
	}

	var existing []models.User
	if err := s.db.Where("email = ? OR username = ?", email, username).Find(&existing).Error; err != nil {
		return internalError("register: lookup", err)
	}
	for _, u := range existing {
		if u.IsVerified {
			return response.NewConflict(msgUserExists)
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return internalError("register: hash", err)
	}
	token, err := utils.RandomToken(tokenBytes)
	if err != nil {
		return internalError("register: token", err)
	}
	expires := s.now().Add(verificationTTL)

	user := &models.User{
		Email:                    email,
		Username:                 username,
		Password:                 hash,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range existing {
			if err := deleteUserCascade(tx, u.ID); err != nil {
				return err
			}
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.NewConflict(msgUserExists)
		}
		return internalError("register: insert", err)
	}
	if len(existing) > 0 {
		logger.Info().Int("replaced", len(existing)).Uint("user_id", user.ID).Msg("replaced unverified accounts on registration")
	}

	s.sendVerification(user, token)
	return nil
}

// sendVerification never fails the registration.
func (s *AuthService) sendVerification(user *models.User, token string) {
	subject, body := verificationEmail(user.Username, s.cfg.VerificationURL(token), verificationTTL)
	task := &MailTask{To: user.Email, Subject: subject, Body: body}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to enqueue verification email")
	}
}

// VerifyEmail consumes a verification token.
func (s *AuthService) VerifyEmail(token string) error {
	if token == "" {
		return response.NewBadRequest(msgTokenRequired)
	}

	var user models.User
	err := s.db.Where("verification_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(msgTokenInvalid)
	}
	if err != nil {
		return internalError("verify: lookup", err)
	}

	if user.VerificationTokenExpires == nil || s.now().After(*user.VerificationTokenExpires) {
		return response.NewExpired(msgTokenExpired)
	}

	result := s.db.Model(&models.User{}).
		Where("id = ? AND verification_token = ?", user.ID, token).
		Updates(map[string]interface{}{
			"is_verified":                true,
			"verification_token":         nil,
			"verification_token_expires": nil,
		})
	if result.Error != nil {
		return internalError("verify: update", result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound(msgTokenInvalid)
	}
	return nil
}

// Login accepts either the username or the email as identifier.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, response.NewBadRequest(msgIdentifierMissing)
	}

	var user models.User
	err := s.db.Where("username = ? OR email = ?", identifier, identifier).Order("id").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewUnauthorized(msgInvalidCreds)
	}
	if err != nil {
		return nil, internalError("login: lookup", err)
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized(msgInvalidCreds)
	}
	if !user.IsVerified {
		return nil, response.NewForbidden(msgNotVerified)
	}

	expireAt := s.now().Add(time.Duration(s.cfg.JWT.ExpireHour) * time.Hour)
	token, err := utils.GenerateToken(user.ID, user.Username, s.cfg.JWT.ExpireHour)
	if err != nil {
		return nil, internalError("login: sign token", err)
	}

	return &LoginResponse{
		Token:    token,
		ExpireAt: expireAt,
		User:     &models.PublicUser{ID: user.ID, Username: user.Username, Email: user.Email, AvatarURL: user.AvatarURL},
	}, nil
}

// GetMe returns the caller's own profile.
func (s *AuthService) GetMe(userID uint) (*models.PublicUser, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internalError("me: lookup", err)
	}
	return &models.PublicUser{ID: user.ID, Username: user.Username, Email: user.Email, AvatarURL: user.AvatarURL}, nil
}
