package service

import (
	"contestbot/internal/session"

	"go.uber.org/zap"
)

// JanitorService removes abandoned dialogue sessions
type JanitorService struct {
	sessions session.Store
	logger   *zap.Logger
}

// NewJanitorService creates a new janitor service
func NewJanitorService(sessions session.Store, logger *zap.Logger) *JanitorService {
	return &JanitorService{
		sessions: sessions,
		logger:   logger,
	}
}

// CleanupStaleSessions purges sessions idle for longer than the store TTL
func (s *JanitorService) CleanupStaleSessions() error {
	s.logger.Debug("Starting cleanup of stale dialogue sessions")

	removed, err := s.sessions.Purge()
	if err != nil {
		s.logger.Error("Failed to cleanup stale sessions", zap.Error(err))
		return err
	}

	if removed > 0 {
		s.logger.Info("Stale dialogue sessions removed", zap.Int("removed", removed))
	}
	return nil
}
