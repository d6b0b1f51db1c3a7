package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_Clone(t *testing.T) {
	original := NewContestSession(StepAwaitName, ContestDraft{
		Type:      ContestTypeButton,
		ChannelID: "demo",
		ShowCount: true,
	})

	cp := original.Clone()
	cp.Contest.Name = "changed"
	cp.Step = StepAwaitButtonText

	assert.Equal(t, "", original.Contest.Name)
	assert.Equal(t, StepAwaitName, original.Step)
	assert.Equal(t, "changed", cp.Contest.Name)
}

func TestSession_CloneNil(t *testing.T) {
	var s *Session
	assert.Nil(t, s.Clone())
}

func TestNewAutoAcceptSession(t *testing.T) {
	s := NewAutoAcceptSession()
	assert.Equal(t, FlowAutoAccept, s.Flow)
	assert.Equal(t, StepAwaitAcceptChannel, s.Step)
	assert.NotNil(t, s.AutoAccept)
	assert.Nil(t, s.Contest)
}
