package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrContestNotFound is returned when a contest id does not exist
	ErrContestNotFound = errors.New("contest not found")
	// ErrUnknownContestType is returned for unsupported contest types
	ErrUnknownContestType = errors.New("unknown contest type")
	// ErrEmptyValue is returned when required free text is blank
	ErrEmptyValue = errors.New("value cannot be empty")
)

// ContestType identifies the kind of contest
type ContestType string

const (
	ContestTypeButton     ContestType = "button_contest"
	ContestTypeComment    ContestType = "comment_contest"
	ContestTypeReaction   ContestType = "reaction_contest"
	ContestTypeSubscriber ContestType = "subscriber_contest"
	ContestTypeVoice      ContestType = "voice_contest"
)

// ContestTypes lists all supported types in menu order
var ContestTypes = []ContestType{
	ContestTypeButton,
	ContestTypeComment,
	ContestTypeReaction,
	ContestTypeSubscriber,
	ContestTypeVoice,
}

// ParseContestType validates a raw contest type
func ParseContestType(raw string) (ContestType, error) {
	for _, t := range ContestTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContestType, raw)
}

// NeedsPostLink reports whether the type is bound to a channel post
func (t ContestType) NeedsPostLink() bool {
	return t == ContestTypeComment || t == ContestTypeReaction
}

// Title returns a user-facing name of the type
func (t ContestType) Title() string {
	switch t {
	case ContestTypeButton:
		return "Конкурс по кнопкам"
	case ContestTypeComment:
		return "Конкурс по комментариям"
	case ContestTypeReaction:
		return "Конкурс реакций в комментариях"
	case ContestTypeSubscriber:
		return "Конкурс среди подписчиков"
	case ContestTypeVoice:
		return "Конкурс на Голоса"
	}
	return string(t)
}

// Contest is a persisted campaign with an entry button
type Contest struct {
	ID               int64
	Name             string
	ButtonText       string
	Type             ContestType
	ChannelID        string
	ShowCount        bool
	Active           bool
	ParticipantCount int
	PostLink         string
	CreatedAt        time.Time
}

// ContestDraft holds the fields collected by the creation dialogue
type ContestDraft struct {
	Type       ContestType `json:"type"`
	ChannelID  string      `json:"channel_id,omitempty"`
	PostLink   string      `json:"post_link,omitempty"`
	ShowCount  bool        `json:"show_count"`
	Name       string      `json:"name,omitempty"`
	ButtonText string      `json:"button_text,omitempty"`
}

// ContestUpdate is a partial update; nil fields stay unchanged
type ContestUpdate struct {
	Name       *string
	ButtonText *string
}

// IsEmpty reports whether the update changes nothing
func (u ContestUpdate) IsEmpty() bool {
	return u.Name == nil && u.ButtonText == nil
}

// ContestSummary is a row of the active contests listing
type ContestSummary struct {
	ID   int64
	Name string
}

const contestPayloadPrefix = "contest_"

// ContestPayload encodes a contest id into button callback data
func ContestPayload(id int64) string {
	return contestPayloadPrefix + strconv.FormatInt(id, 10)
}

// IsContestPayload reports whether callback data belongs to a contest button
func IsContestPayload(data string) bool {
	return strings.HasPrefix(data, contestPayloadPrefix)
}

// ParseContestPayload extracts the contest id from callback data
func ParseContestPayload(data string) (int64, error) {
	if !IsContestPayload(data) {
		return 0, fmt.Errorf("not a contest payload: %q", data)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, contestPayloadPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid contest id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid contest id: %d", id)
	}
	return id, nil
}

// ButtonLabel renders the entry button label, optionally with the live count
func ButtonLabel(c *Contest) string {
	if c.ShowCount {
		return fmt.Sprintf("%s (%d)", c.ButtonText, c.ParticipantCount)
	}
	return c.ButtonText
}

// PostText is the message text published together with the entry button
func PostText(name string) string {
	return "Конкурс: " + name
}

// MessageRef identifies a message carrying an entry button.
// Inline messages have ChatID 0 and a string MessageID.
type MessageRef struct {
	ChatID    int64
	MessageID string
}
