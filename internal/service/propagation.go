package service

import (
	"contestbot/internal/domain"

	"go.uber.org/zap"
)

// Propagator re-renders a contest entry button after its counter changed
type Propagator struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewPropagator creates a new propagator
func NewPropagator(gateway Gateway, logger *zap.Logger) *Propagator {
	return &Propagator{
		gateway: gateway,
		logger:  logger,
	}
}

// Refresh updates the button on the given message only. Other copies of the
// same contest button catch up on their next interaction.
// Failures are logged and reported as false.
func (p *Propagator) Refresh(surface domain.MessageRef, contest *domain.Contest) bool {
	label := domain.ButtonLabel(contest)

	if err := p.gateway.EditButton(surface, label, domain.ContestPayload(contest.ID)); err != nil {
		p.logger.Warn("Failed to refresh contest button",
			zap.Error(err),
			zap.Int64("contest_id", contest.ID),
			zap.Int64("chat_id", surface.ChatID),
			zap.String("message_id", surface.MessageID),
		)
		return false
	}

	p.logger.Debug("Contest button refreshed",
		zap.Int64("contest_id", contest.ID),
		zap.String("label", label),
	)
	return true
}
