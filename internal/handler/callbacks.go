package handler

import (
	"strconv"
	"strings"
	"unicode"

	"contestbot/internal/domain"
	"contestbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textAlreadyJoined = "Вы уже участвуете в этом конкурсе."
	textNotSubscribed = "Вы должны подписаться на канал, чтобы принять участие в конкурсе."
	textContestClosed = "Этот конкурс уже завершён."
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// isNotModified reports the Telegram error for an edit that changes nothing
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback, nothing to resend
	if isNotModified(err) {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before the caller sends a new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles callback queries without a registered unique,
// which are the contest entry buttons
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	if domain.IsContestPayload(data) {
		return h.handleParticipate(c, data)
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleParticipate counts the user for the contest behind the pressed button
func (h *Handler) handleParticipate(c tele.Context, data string) error {
	userID := c.Sender().ID

	contestID, err := domain.ParseContestPayload(data)
	if err != nil {
		h.logger.Warn("Malformed contest payload", zap.String("data", data), zap.Int64("user_id", userID))
		return c.Respond(&tele.CallbackResponse{Text: textContestNotFound, ShowAlert: true})
	}

	result, err := h.participation.Participate(contestID, userID, callbackSurface(c.Callback()))
	if err != nil {
		h.logger.Error("Failed to register participation",
			zap.Error(err),
			zap.Int64("contest_id", contestID),
			zap.Int64("user_id", userID),
		)
		return c.Respond(&tele.CallbackResponse{Text: textInternalError, ShowAlert: true})
	}

	return c.Respond(&tele.CallbackResponse{Text: outcomeText(result), ShowAlert: true})
}

// callbackSurface identifies the message that carries the pressed button
func callbackSurface(cb *tele.Callback) domain.MessageRef {
	if cb.Message != nil && cb.Message.Chat != nil {
		return domain.MessageRef{
			ChatID:    cb.Message.Chat.ID,
			MessageID: strconv.Itoa(cb.Message.ID),
		}
	}
	// Inline messages are addressed by their inline id alone
	return domain.MessageRef{MessageID: cb.MessageID}
}

// outcomeText renders the callback alert for a participation attempt
func outcomeText(result *service.ParticipationResult) string {
	switch result.Outcome {
	case service.OutcomeJoined:
		return "Вы успешно приняли участие в конкурсе: " + result.Contest.ButtonText
	case service.OutcomeAlreadyJoined:
		return textAlreadyJoined
	case service.OutcomeNotSubscribed:
		return textNotSubscribed
	case service.OutcomeClosed:
		return textContestClosed
	default:
		return textContestNotFound
	}
}
