package handler

import (
	"errors"
	"strconv"
	"strings"

	"contestbot/internal/domain"
	"contestbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleChannelPost watches channel posts for share codes
func (h *Handler) handleChannelPost(c tele.Context) error {
	return h.handleShareCode(c, strings.TrimSpace(c.Text()))
}

// handleShareCode reposts a contest button when the text is a share code
func (h *Handler) handleShareCode(c tele.Context, text string) error {
	id, ok := service.ParseShareCode(h.botUsername, text)
	if !ok {
		return nil
	}
	return h.postContestButton(c, id)
}

// postContestButton publishes the entry button of a contest into the current chat.
// Problems are reported only in private chats; groups and channels stay quiet.
func (h *Handler) postContestButton(c tele.Context, id int64) error {
	chat := c.Chat()
	private := chat.Type == tele.ChatPrivate

	contest, err := h.contests.Get(id)
	if errors.Is(err, domain.ErrContestNotFound) {
		if private {
			return c.Send(textContestNotFound)
		}
		return nil
	}
	if err != nil {
		h.logger.Error("Failed to load contest for share code", zap.Error(err), zap.Int64("contest_id", id))
		if private {
			return c.Send(textInternalError)
		}
		return nil
	}
	if !contest.Active {
		if private {
			return c.Send(textContestClosed)
		}
		return nil
	}

	_, err = h.gateway.PublishButton(
		strconv.FormatInt(chat.ID, 10),
		domain.PostText(contest.Name),
		domain.ButtonLabel(contest),
		domain.ContestPayload(contest.ID),
	)
	if err != nil {
		h.logger.Warn("Failed to post contest button",
			zap.Error(err),
			zap.Int64("contest_id", id),
			zap.Int64("chat_id", chat.ID),
		)
		return nil
	}

	h.logger.Info("Contest button posted by share code",
		zap.Int64("contest_id", id),
		zap.Int64("chat_id", chat.ID),
	)
	return nil
}
