package domain

import "time"

// AutoAcceptSettings configures automatic approval of join requests
type AutoAcceptSettings struct {
	ChannelID    string
	StartMessage string
	CreatedBy    int64
	CreatedAt    time.Time
}

// AutoAcceptDraft holds fields collected by the auto-accept dialogue
type AutoAcceptDraft struct {
	ChannelID string `json:"channel_id,omitempty"`
}
