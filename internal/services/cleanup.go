package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	unverifiedPurgeSpec = "@hourly"
	logRetentionSpec    = "30 3 * * *"
)

// CleanupService runs the periodic maintenance jobs.
type CleanupService struct {
	db            *gorm.DB
	logs          *SystemLogService
	cfg           config.CleanupConfig
	cronScheduler *cron.Cron
	now           func() time.Time
}

func NewCleanupService(db *gorm.DB, logs *SystemLogService, cfg config.CleanupConfig) *CleanupService {
	return &CleanupService{db: db, logs: logs, cfg: cfg, now: time.Now}
}

func (s *CleanupService) StartScheduler() error {
	if !s.cfg.Enabled {
		logger.Infof("[Cleanup] Scheduler disabled")
		return nil
	}

	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(unverifiedPurgeSpec, s.runUnverifiedPurge); err != nil {
		return err
	}
	if _, err := s.cronScheduler.AddFunc(logRetentionSpec, s.runLogRetention); err != nil {
		return err
	}

	s.cronScheduler.Start()
	logger.Infof("[Cleanup] Scheduler started")
	return nil
}

func (s *CleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

// PurgeUnverified deletes accounts whose verification link expired more than
// the configured grace period ago, with everything they own.
func (s *CleanupService) PurgeUnverified() (int, error) {
	cutoff := s.now().Add(-time.Duration(s.cfg.UnverifiedGraceHours) * time.Hour)

	var ids []uint
	if err := s.db.Model(&models.User{}).
		Where("is_verified = ? AND verification_token_expires < ?", false, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return deleteUserCascade(tx, id)
		}); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

func (s *CleanupService) runUnverifiedPurge() {
	purged, err := s.PurgeUnverified()
	if err != nil {
		logger.Error().Err(err).Int("purged", purged).Msg("[Cleanup] unverified purge failed")
		return
	}
	if purged > 0 {
		logger.Info().Int("purged", purged).Msg("[Cleanup] removed expired unverified accounts")
		s.logs.LogInfo("cleanup", "purge_unverified", "removed expired unverified accounts", nil, "", map[string]int{"count": purged})
	}
}

func (s *CleanupService) runLogRetention() {
	deleted, err := s.logs.CleanupOldLogs(s.cfg.LogRetentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("[Cleanup] failed to cleanup old logs")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", s.cfg.LogRetentionDays).Msg("[Cleanup] removed old system logs")
	}
}
