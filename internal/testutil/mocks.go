package testutil

import (
	"contestbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockContestRepository is a mock for ContestRepository
type MockContestRepository struct {
	mock.Mock
}

func (m *MockContestRepository) Create(draft domain.ContestDraft) (int64, error) {
	args := m.Called(draft)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContestRepository) Get(id int64) (*domain.Contest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contest), args.Error(1)
}

func (m *MockContestRepository) ListActive() ([]domain.ContestSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContestSummary), args.Error(1)
}

func (m *MockContestRepository) UpdateFields(id int64, update domain.ContestUpdate) error {
	args := m.Called(id, update)
	return args.Error(0)
}

func (m *MockContestRepository) Archive(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockContestRepository) HasParticipant(contestID, userID int64) (bool, error) {
	args := m.Called(contestID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContestRepository) AddParticipant(contestID, userID int64) (bool, int, error) {
	args := m.Called(contestID, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

// MockAutoAcceptRepository is a mock for AutoAcceptRepository
type MockAutoAcceptRepository struct {
	mock.Mock
}

func (m *MockAutoAcceptRepository) Save(settings domain.AutoAcceptSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockAutoAcceptRepository) GetByChannel(channelID string) (*domain.AutoAcceptSettings, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutoAcceptSettings), args.Error(1)
}

// MockGateway is a mock for the messaging gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) IsBotAdmin(channelRef string) (bool, error) {
	args := m.Called(channelRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) PublishButton(chatRef, text, label, payload string) (domain.MessageRef, error) {
	args := m.Called(chatRef, text, label, payload)
	return args.Get(0).(domain.MessageRef), args.Error(1)
}

func (m *MockGateway) EditButton(msg domain.MessageRef, label, payload string) error {
	args := m.Called(msg, label, payload)
	return args.Error(0)
}

func (m *MockGateway) ApproveJoinRequest(chatID, userID int64) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}

func (m *MockGateway) SendText(userID int64, text string) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

// MockSubscriptionChecker is a mock for SubscriptionChecker
type MockSubscriptionChecker struct {
	mock.Mock
}

func (m *MockSubscriptionChecker) IsSubscribed(userID int64, channelRef string) (bool, error) {
	args := m.Called(userID, channelRef)
	return args.Bool(0), args.Error(1)
}

// MockSessionStore is a mock for session.Store
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(userID int64) (*domain.Session, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Put(userID int64, s *domain.Session) error {
	args := m.Called(userID, s)
	return args.Error(0)
}

func (m *MockSessionStore) Swap(userID int64, expected int64, next *domain.Session) (bool, error) {
	args := m.Called(userID, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Clear(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockSessionStore) Purge() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
