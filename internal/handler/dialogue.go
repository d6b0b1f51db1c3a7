package handler

import (
	"strings"

	"contestbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleBeginContest opens contest creation from the start menu
func (h *Handler) handleBeginContest(c tele.Context) error {
	userID := c.Sender().ID

	reply, err := h.dialogue.Begin(userID)
	if err != nil {
		h.logger.Error("Failed to begin contest dialogue", zap.Error(err), zap.Int64("user_id", userID))
		return c.Respond(&tele.CallbackResponse{Text: textInternalError})
	}

	if err := h.sendReply(c, reply); err != nil {
		return err
	}
	return c.Respond()
}

// handleSelectType returns a callback handler for one contest type button
func (h *Handler) handleSelectType(contestType domain.ContestType) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		reply, err := h.dialogue.SelectType(userID, contestType)
		if err != nil {
			h.logger.Error("Failed to select contest type", zap.Error(err), zap.Int64("user_id", userID))
			return c.Respond(&tele.CallbackResponse{Text: textInternalError})
		}

		// Drop the type keyboard so the choice cannot be repeated by accident
		if err := c.Edit(contestType.Title()); err != nil {
			// handleEditError acknowledges the callback
			_ = h.handleEditError(err, c, userID)
			return h.sendReply(c, reply)
		}
		if err := h.sendReply(c, reply); err != nil {
			return err
		}
		return c.Respond()
	}
}

// handleShowCount returns a callback handler for the yes/no live count choice
func (h *Handler) handleShowCount(show bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		reply, err := h.dialogue.ChooseShowCount(userID, show)
		if err != nil {
			h.logger.Error("Failed to store show count choice", zap.Error(err), zap.Int64("user_id", userID))
			return c.Respond(&tele.CallbackResponse{Text: textInternalError})
		}

		if err := h.sendReply(c, reply); err != nil {
			return err
		}
		return c.Respond()
	}
}

// handleCancel aborts the current dialogue
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID

	reply, err := h.dialogue.Cancel(userID)
	if err != nil {
		h.logger.Error("Failed to cancel dialogue", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(textInternalError)
	}
	return h.sendReply(c, reply)
}

// handleAutoAccept starts the join request auto-accept setup
func (h *Handler) handleAutoAccept(c tele.Context) error {
	userID := c.Sender().ID

	reply, err := h.dialogue.BeginAutoAccept(userID)
	if err != nil {
		h.logger.Error("Failed to begin auto-accept dialogue", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(textInternalError)
	}
	return h.sendReply(c, reply)
}

// handleText routes free text: dialogue input in private chats first,
// then share codes in any chat
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore unknown commands
	if strings.HasPrefix(text, "/") {
		return nil
	}

	if c.Chat().Type == tele.ChatPrivate && c.Sender() != nil {
		userID := c.Sender().ID

		reply, handled, err := h.dialogue.HandleText(userID, text)
		if err != nil {
			h.logger.Error("Failed to handle dialogue input",
				zap.Error(err),
				zap.Int64("user_id", userID),
			)
			return c.Send(textInternalError)
		}
		if handled {
			return h.sendReply(c, reply)
		}
	}

	return h.handleShareCode(c, text)
}
