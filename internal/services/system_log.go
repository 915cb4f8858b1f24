package services

import (
	"encoding/json"
	"time"

	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/logger"
	"gorm.io/gorm"
)

// SystemLogService persists security and maintenance events.
type SystemLogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db, now: time.Now}
}

func (s *SystemLogService) LogInfo(module, action, message string, userID *uint, ip string, extra interface{}) {
	s.write("info", module, action, message, userID, ip, extra)
}

func (s *SystemLogService) LogWarning(module, action, message string, userID *uint, ip string, extra interface{}) {
	s.write("warning", module, action, message, userID, ip, extra)
}

func (s *SystemLogService) LogError(module, action, message string, userID *uint, ip string, extra interface{}) {
	s.write("error", module, action, message, userID, ip, extra)
}

func (s *SystemLogService) write(level, module, action, message string, userID *uint, ip string, extra interface{}) {
	if s == nil || s.db == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		Extra:     extraStr,
		CreatedAt: s.now(),
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("module", module).Str("action", action).Msg("failed to persist system log")
	}
}

// CleanupOldLogs deletes logs older than retentionDays and returns the count.
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
