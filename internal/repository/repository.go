package repository

import (
	"contestbot/internal/domain"
)

// ContestRepository defines contest data operations
type ContestRepository interface {
	Create(draft domain.ContestDraft) (int64, error)
	Get(id int64) (*domain.Contest, error)
	ListActive() ([]domain.ContestSummary, error)
	UpdateFields(id int64, update domain.ContestUpdate) error
	Archive(id int64) error
	HasParticipant(contestID, userID int64) (bool, error)
	AddParticipant(contestID, userID int64) (bool, int, error)
}

// AutoAcceptRepository defines join request auto-accept settings operations
type AutoAcceptRepository interface {
	Save(settings domain.AutoAcceptSettings) error
	GetByChannel(channelID string) (*domain.AutoAcceptSettings, error)
}
