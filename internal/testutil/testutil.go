package testutil

import (
	"sort"
	"sync"
	"time"

	"contestbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestContest creates an active button contest
func NewTestContest(id int64, showCount bool, participants int) *domain.Contest {
	return &domain.Contest{
		ID:               id,
		Name:             "Spring Draw",
		ButtonText:       "Join",
		Type:             domain.ContestTypeButton,
		ChannelID:        "demo",
		ShowCount:        showCount,
		Active:           true,
		ParticipantCount: participants,
		CreatedAt:        time.Now(),
	}
}

// FakeContestRepository is an in-memory ContestRepository that is safe for
// concurrent use. AddParticipant is atomic like the SQL transaction it stands in for.
type FakeContestRepository struct {
	mu           sync.Mutex
	nextID       int64
	contests     map[int64]*domain.Contest
	participants map[int64]map[int64]bool
}

// NewFakeContestRepository creates an empty in-memory repository
func NewFakeContestRepository() *FakeContestRepository {
	return &FakeContestRepository{
		contests:     make(map[int64]*domain.Contest),
		participants: make(map[int64]map[int64]bool),
	}
}

func (f *FakeContestRepository) Create(draft domain.ContestDraft) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.contests[f.nextID] = &domain.Contest{
		ID:         f.nextID,
		Name:       draft.Name,
		ButtonText: draft.ButtonText,
		Type:       draft.Type,
		ChannelID:  draft.ChannelID,
		ShowCount:  draft.ShowCount,
		Active:     true,
		PostLink:   draft.PostLink,
		CreatedAt:  time.Now(),
	}
	return f.nextID, nil
}

func (f *FakeContestRepository) Get(id int64) (*domain.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contests[id]
	if !ok {
		return nil, domain.ErrContestNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *FakeContestRepository) ListActive() ([]domain.ContestSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := []domain.ContestSummary{}
	for _, c := range f.contests {
		if c.Active {
			list = append(list, domain.ContestSummary{ID: c.ID, Name: c.Name})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *FakeContestRepository) UpdateFields(id int64, update domain.ContestUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contests[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.ButtonText != nil {
		c.ButtonText = *update.ButtonText
	}
	return nil
}

func (f *FakeContestRepository) Archive(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contests[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	c.Active = false
	return nil
}

func (f *FakeContestRepository) HasParticipant(contestID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participants[contestID][userID], nil
}

func (f *FakeContestRepository) AddParticipant(contestID, userID int64) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.contests[contestID]; !ok {
		return false, 0, domain.ErrContestNotFound
	}
	if f.participants[contestID] == nil {
		f.participants[contestID] = make(map[int64]bool)
	}
	if f.participants[contestID][userID] {
		return false, 0, nil
	}
	f.participants[contestID][userID] = true

	count, err := f.increment(contestID)
	if err != nil {
		return false, 0, err
	}
	return true, count, nil
}

func (f *FakeContestRepository) increment(id int64) (int, error) {
	c, ok := f.contests[id]
	if !ok {
		return 0, domain.ErrContestNotFound
	}
	c.ParticipantCount++
	return c.ParticipantCount, nil
}
