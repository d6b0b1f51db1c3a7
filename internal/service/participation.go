package service

import (
	"errors"
	"fmt"

	"contestbot/internal/domain"
	"contestbot/internal/repository"

	"go.uber.org/zap"
)

// Outcome is the result of a participation attempt
type Outcome int

const (
	OutcomeJoined Outcome = iota
	OutcomeAlreadyJoined
	OutcomeNotFound
	OutcomeNotSubscribed
	OutcomeClosed
)

// ParticipationResult describes what happened on a button activation
type ParticipationResult struct {
	Outcome Outcome
	Contest *domain.Contest
}

// ParticipationService records users joining contests
type ParticipationService struct {
	contestRepo repository.ContestRepository
	checker     SubscriptionChecker
	propagator  *Propagator
	logger      *zap.Logger
}

// NewParticipationService creates a new participation service
func NewParticipationService(
	contestRepo repository.ContestRepository,
	checker SubscriptionChecker,
	propagator *Propagator,
	logger *zap.Logger,
) *ParticipationService {
	return &ParticipationService{
		contestRepo: contestRepo,
		checker:     checker,
		propagator:  propagator,
		logger:      logger,
	}
}

// Participate counts the user for the contest at most once. When the contest
// shows a live count, the button on surface is refreshed afterwards.
func (s *ParticipationService) Participate(contestID, userID int64, surface domain.MessageRef) (*ParticipationResult, error) {
	contest, err := s.contestRepo.Get(contestID)
	if errors.Is(err, domain.ErrContestNotFound) {
		return &ParticipationResult{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contest: %w", err)
	}

	if !contest.Active {
		return &ParticipationResult{Outcome: OutcomeClosed, Contest: contest}, nil
	}

	joined, err := s.contestRepo.HasParticipant(contestID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if joined {
		return &ParticipationResult{Outcome: OutcomeAlreadyJoined, Contest: contest}, nil
	}

	subscribed, err := s.checker.IsSubscribed(userID, domain.ChannelRef(contest.ChannelID))
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if !subscribed {
		return &ParticipationResult{Outcome: OutcomeNotSubscribed, Contest: contest}, nil
	}

	added, count, err := s.contestRepo.AddParticipant(contestID, userID)
	if err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}
	if !added {
		// A concurrent activation by the same user won the insert
		return &ParticipationResult{Outcome: OutcomeAlreadyJoined, Contest: contest}, nil
	}
	contest.ParticipantCount = count

	s.logger.Info("User joined contest",
		zap.Int64("contest_id", contestID),
		zap.Int64("user_id", userID),
		zap.Int("participant_count", count),
	)

	if contest.ShowCount {
		s.propagator.Refresh(surface, contest)
	}

	return &ParticipationResult{Outcome: OutcomeJoined, Contest: contest}, nil
}
