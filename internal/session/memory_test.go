package session

import (
	"testing"
	"time"

	"contestbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftSession(step domain.Step) *domain.Session {
	return domain.NewContestSession(step, domain.ContestDraft{Type: domain.ContestTypeButton})
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	s, err := store.Get(42)

	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	s := newDraftSession(domain.StepAwaitChannelID)
	require.NoError(t, store.Put(42, s))
	assert.Equal(t, int64(1), s.Revision)

	got, err := store.Get(42)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitChannelID, got.Step)
	assert.Equal(t, int64(1), got.Revision)

	// Returned copy must not alias stored state
	got.Contest.Name = "mutated"
	again, _ := store.Get(42)
	assert.Equal(t, "", again.Contest.Name)
}

func TestMemoryStore_PutBumpsRevision(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	require.NoError(t, store.Put(42, newDraftSession(domain.StepSelectType)))
	require.NoError(t, store.Put(42, newDraftSession(domain.StepAwaitChannelID)))

	got, _ := store.Get(42)
	assert.Equal(t, int64(2), got.Revision)
}

func TestMemoryStore_Swap(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Put(42, newDraftSession(domain.StepAwaitChannelID)))

	current, _ := store.Get(42)
	next := current.Clone()
	next.Step = domain.StepAwaitShowCount

	ok, err := store.Swap(42, current.Revision, next)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale revision loses
	stale := current.Clone()
	stale.Step = domain.StepAwaitName
	ok, err = store.Swap(42, current.Revision, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := store.Get(42)
	assert.Equal(t, domain.StepAwaitShowCount, got.Step)
}

func TestMemoryStore_SwapAfterClear(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Put(42, newDraftSession(domain.StepAwaitChannelID)))
	current, _ := store.Get(42)

	require.NoError(t, store.Clear(42))

	ok, err := store.Swap(42, current.Revision, current)
	assert.NoError(t, err)
	assert.False(t, ok)

	got, _ := store.Get(42)
	assert.Nil(t, got)
}

func TestMemoryStore_RevisionsSurviveClear(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	first := newDraftSession(domain.StepAwaitChannelID)
	require.NoError(t, store.Put(42, first))
	require.NoError(t, store.Clear(42))

	restarted := newDraftSession(domain.StepSelectType)
	require.NoError(t, store.Put(42, restarted))
	assert.Greater(t, restarted.Revision, first.Revision)

	// A transition started before Clear must not land on the new dialogue
	stale := newDraftSession(domain.StepAwaitPostLink)
	ok, err := store.Swap(42, first.Revision, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := store.Get(42)
	assert.Equal(t, domain.StepSelectType, got.Step)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Put(1, newDraftSession(domain.StepAwaitName)))
	require.NoError(t, store.Put(2, newDraftSession(domain.StepAwaitButtonText)))

	require.NoError(t, store.Clear(1))

	first, _ := store.Get(1)
	second, _ := store.Get(2)
	assert.Nil(t, first)
	assert.Equal(t, domain.StepAwaitButtonText, second.Step)
}

func TestMemoryStore_Purge(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(1, newDraftSession(domain.StepAwaitName)))

	now = now.Add(20 * time.Minute)
	require.NoError(t, store.Put(2, newDraftSession(domain.StepAwaitName)))

	now = now.Add(15 * time.Minute)
	removed, err := store.Purge()

	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	first, _ := store.Get(1)
	second, _ := store.Get(2)
	assert.Nil(t, first)
	assert.NotNil(t, second)
}

func TestMemoryStore_PurgeWithoutTTL(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Put(1, newDraftSession(domain.StepAwaitName)))

	removed, err := store.Purge()

	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}
