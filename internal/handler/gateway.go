package handler

import (
	"fmt"
	"strconv"

	"contestbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// chatRecipient addresses a chat by "@username" or numeric id
type chatRecipient string

func (r chatRecipient) Recipient() string {
	return string(r)
}

// TelegramGateway implements service.Gateway on top of telebot
type TelegramGateway struct {
	bot    *tele.Bot
	logger *zap.Logger
}

// NewTelegramGateway creates a new gateway
func NewTelegramGateway(bot *tele.Bot, logger *zap.Logger) *TelegramGateway {
	return &TelegramGateway{
		bot:    bot,
		logger: logger,
	}
}

// IsBotAdmin checks the chat administrators for the bot itself
func (g *TelegramGateway) IsBotAdmin(channelRef string) (bool, error) {
	chat, err := g.bot.ChatByUsername(channelRef)
	if err != nil {
		return false, fmt.Errorf("resolve chat %s: %w", channelRef, err)
	}

	admins, err := g.bot.AdminsOf(chat)
	if err != nil {
		return false, fmt.Errorf("get admins of %s: %w", channelRef, err)
	}

	for _, member := range admins {
		if member.User != nil && member.User.ID == g.bot.Me.ID {
			return true, nil
		}
	}
	return false, nil
}

// PublishButton sends text with a single contest button
func (g *TelegramGateway) PublishButton(chatRef, text, label, payload string) (domain.MessageRef, error) {
	msg, err := g.bot.Send(chatRecipient(chatRef), text, buttonMarkup(label, payload))
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("send button to %s: %w", chatRef, err)
	}

	ref := domain.MessageRef{MessageID: strconv.Itoa(msg.ID)}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref, nil
}

// EditButton swaps the button of a sent message. An unchanged label is not an error.
func (g *TelegramGateway) EditButton(msg domain.MessageRef, label, payload string) error {
	stored := tele.StoredMessage{MessageID: msg.MessageID, ChatID: msg.ChatID}

	_, err := g.bot.EditReplyMarkup(stored, buttonMarkup(label, payload))
	if isNotModified(err) {
		g.logger.Debug("Contest button already up to date",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("message_id", msg.MessageID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("edit button: %w", err)
	}
	return nil
}

// ApproveJoinRequest accepts a pending join request
func (g *TelegramGateway) ApproveJoinRequest(chatID, userID int64) error {
	if err := g.bot.ApproveJoinRequest(tele.ChatID(chatID), &tele.User{ID: userID}); err != nil {
		return fmt.Errorf("approve join request: %w", err)
	}
	return nil
}

// SendText sends a private message
func (g *TelegramGateway) SendText(userID int64, text string) error {
	if _, err := g.bot.Send(&tele.User{ID: userID}, text); err != nil {
		return fmt.Errorf("send message to %d: %w", userID, err)
	}
	return nil
}

// buttonMarkup builds a one-button inline keyboard with raw callback data
func buttonMarkup(label, payload string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{{Text: label, Data: payload}},
		},
	}
}
