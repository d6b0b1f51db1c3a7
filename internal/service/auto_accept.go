package service

import (
	"fmt"
	"strconv"

	"contestbot/internal/repository"

	"go.uber.org/zap"
)

// AutoAcceptService approves join requests for configured channels
type AutoAcceptService struct {
	repo    repository.AutoAcceptRepository
	gateway Gateway
	logger  *zap.Logger
}

// NewAutoAcceptService creates a new auto-accept service
func NewAutoAcceptService(repo repository.AutoAcceptRepository, gateway Gateway, logger *zap.Logger) *AutoAcceptService {
	return &AutoAcceptService{
		repo:    repo,
		gateway: gateway,
		logger:  logger,
	}
}

// HandleJoinRequest approves the request if the chat has auto-accept
// configured and greets the user with the start message.
// Settings are looked up by username first, then by numeric chat id.
func (s *AutoAcceptService) HandleJoinRequest(chatID int64, chatUsername string, userID int64) (bool, error) {
	keys := []string{}
	if chatUsername != "" {
		keys = append(keys, chatUsername)
	}
	keys = append(keys, strconv.FormatInt(chatID, 10))

	for _, key := range keys {
		settings, err := s.repo.GetByChannel(key)
		if err != nil {
			return false, fmt.Errorf("get auto-accept settings: %w", err)
		}
		if settings == nil {
			continue
		}

		if err := s.gateway.ApproveJoinRequest(chatID, userID); err != nil {
			s.logger.Warn("Failed to approve join request",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", userID),
			)
			return false, nil
		}

		s.logger.Info("Join request approved",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
		)

		if settings.StartMessage != "" {
			if err := s.gateway.SendText(userID, settings.StartMessage); err != nil {
				s.logger.Warn("Failed to send start message", zap.Error(err), zap.Int64("user_id", userID))
			}
		}
		return true, nil
	}

	return false, nil
}
