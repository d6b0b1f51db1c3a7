package service

import "contestbot/internal/domain"

// Gateway is the chat transport the services talk through
type Gateway interface {
	// IsBotAdmin reports whether the bot administers the channel.
	// Unknown or unresolvable channels return an error.
	IsBotAdmin(channelRef string) (bool, error)
	// PublishButton posts text with a single inline button into a chat
	PublishButton(chatRef, text, label, payload string) (domain.MessageRef, error)
	// EditButton replaces the inline button of an existing message
	EditButton(msg domain.MessageRef, label, payload string) error
	// ApproveJoinRequest accepts a pending join request
	ApproveJoinRequest(chatID, userID int64) error
	// SendText sends a plain private message to a user
	SendText(userID int64, text string) error
}
