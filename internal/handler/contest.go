package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contestbot/internal/domain"
	"contestbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textContestNotFound    = "Конкурс с указанным ID не найден."
	textAskContestID       = "Пожалуйста, укажите ID конкурса."
	textEditUsage          = "Пожалуйста, укажите ID конкурса и новые условия.\nПример: /edit_contest 5 Новое название | Новый текст кнопки"
	textAskChannelName     = "Пожалуйста, укажите username канала."
	textCheckSubscribed    = "Вы подписаны на указанный канал."
	textCheckNotSubscribed = "Вы не подписаны на указанный канал."
	textInvalidContestID   = "ID конкурса должен быть положительным числом."
)

// handleListContests lists active contests
func (h *Handler) handleListContests(c tele.Context) error {
	contests, err := h.contests.ListActive()
	if err != nil {
		h.logger.Error("Failed to list contests", zap.Error(err))
		return c.Send(textInternalError)
	}
	return c.Send(service.FormatList(contests))
}

// handleEditContest changes name and/or button text.
// Arguments are "<id> <name> [button]" or, for values with spaces,
// "<id> <name> | <button>".
func (h *Handler) handleEditContest(c tele.Context) error {
	id, name, buttonText, ok := parseEditArgs(c.Message().Payload)
	if !ok {
		return c.Send(textEditUsage)
	}

	if err := h.contests.Edit(id, name, buttonText); err != nil {
		return h.sendContestError(c, err, id, "Failed to edit contest")
	}
	return c.Send(fmt.Sprintf("Конкурс с ID %d отредактирован.", id))
}

// handleArchiveContest retires a contest
func (h *Handler) handleArchiveContest(c tele.Context) error {
	id, ok, err := h.contestIDArg(c)
	if !ok {
		return err
	}

	if err := h.contests.Archive(id); err != nil {
		return h.sendContestError(c, err, id, "Failed to archive contest")
	}
	return c.Send(fmt.Sprintf("Конкурс с ID %d архивирован.", id))
}

// handleExportStatistics sends the contest report
func (h *Handler) handleExportStatistics(c tele.Context) error {
	id, ok, err := h.contestIDArg(c)
	if !ok {
		return err
	}

	report, err := h.contests.Report(id)
	if err != nil {
		return h.sendContestError(c, err, id, "Failed to build contest report")
	}
	return c.Send(report)
}

// handleCheckSubscription reports whether the user is subscribed to a channel
func (h *Handler) handleCheckSubscription(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send(textAskChannelName)
	}

	channelID, err := domain.NormalizeChannel(args[0])
	if err != nil {
		return c.Send(textAskChannelName)
	}

	userID := c.Sender().ID
	subscribed, err := h.subscription.IsSubscribed(userID, domain.ChannelRef(channelID))
	if err != nil {
		h.logger.Error("Failed to check subscription",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("channel_id", channelID),
		)
		return c.Send(textInternalError)
	}

	if subscribed {
		return c.Send(textCheckSubscribed)
	}
	return c.Send(textCheckNotSubscribed)
}

// contestIDArg parses the first command argument as a contest id.
// When ok is false the user has already been answered.
func (h *Handler) contestIDArg(c tele.Context) (int64, bool, error) {
	args := c.Args()
	if len(args) == 0 {
		return 0, false, c.Send(textAskContestID)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false, c.Send(textInvalidContestID)
	}
	return id, true, nil
}

// sendContestError maps a service error to a user-facing message
func (h *Handler) sendContestError(c tele.Context, err error, id int64, msg string) error {
	if errors.Is(err, domain.ErrContestNotFound) {
		return c.Send(textContestNotFound)
	}
	h.logger.Error(msg, zap.Error(err), zap.Int64("contest_id", id))
	return c.Send(textInternalError)
}

// parseEditArgs splits the /edit_contest payload into id, name and button text
func parseEditArgs(payload string) (int64, string, string, bool) {
	fields := strings.Fields(payload)
	if len(fields) < 2 {
		return 0, "", "", false
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(payload), fields[0]))
	if name, button, found := strings.Cut(rest, "|"); found {
		name, button = strings.TrimSpace(name), strings.TrimSpace(button)
		if name == "" && button == "" {
			return 0, "", "", false
		}
		return id, name, button, true
	}

	name := fields[1]
	var button string
	if len(fields) > 2 {
		button = fields[2]
	}
	return id, name, button, true
}
