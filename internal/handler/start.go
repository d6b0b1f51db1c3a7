package handler

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textMainMenu = "Привет! Я помогу провести конкурс в вашем канале или группе.\n\nВыберите действие:"
	textFAQ      = "Частые вопросы:\n\n" +
		"• Как создать конкурс? Нажмите «Начать конкурс», выберите тип и следуйте подсказкам.\n" +
		"• Что нужно от канала? Бот должен быть администратором канала или группы.\n" +
		"• Как добавить кнопку в другой чат? Отправьте туда код, который бот выдал после создания конкурса.\n" +
		"• Как прервать создание? Отправьте /cancel."
	textContacts = "Контакты: по всем вопросам пишите администратору бота."
)

// handleStart handles /start, optionally with a contest id deep-link payload
func (h *Handler) handleStart(c tele.Context) error {
	sender := c.Sender()

	h.logger.Info("User started bot",
		zap.Int64("user_id", sender.ID),
		zap.String("username", sender.Username),
	)

	if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
		if id, err := strconv.ParseInt(payload, 10, 64); err == nil && id > 0 {
			return h.postContestButton(c, id)
		}
	}

	return c.Send(textMainMenu, mainMenuMarkup())
}

// handleFAQ shows frequently asked questions
func (h *Handler) handleFAQ(c tele.Context) error {
	if err := c.Send(textFAQ); err != nil {
		return err
	}
	return c.Respond()
}

// handleContacts shows contact information
func (h *Handler) handleContacts(c tele.Context) error {
	if err := c.Send(textContacts); err != nil {
		return err
	}
	return c.Respond()
}
