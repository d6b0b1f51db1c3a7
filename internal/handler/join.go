package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleJoinRequest approves join requests for auto-accept channels
func (h *Handler) handleJoinRequest(c tele.Context) error {
	req := c.ChatJoinRequest()
	if req == nil || req.Chat == nil || req.Sender == nil {
		return nil
	}

	approved, err := h.autoAccept.HandleJoinRequest(req.Chat.ID, req.Chat.Username, req.Sender.ID)
	if err != nil {
		h.logger.Error("Failed to process join request",
			zap.Error(err),
			zap.Int64("chat_id", req.Chat.ID),
			zap.Int64("user_id", req.Sender.ID),
		)
		return nil
	}

	if !approved {
		h.logger.Debug("Join request left pending",
			zap.Int64("chat_id", req.Chat.ID),
			zap.Int64("user_id", req.Sender.ID),
		)
	}
	return nil
}
