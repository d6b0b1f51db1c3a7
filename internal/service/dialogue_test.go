package service

import (
	"fmt"
	"testing"
	"time"

	"contestbot/internal/domain"
	"contestbot/internal/session"
	"contestbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUser = int64(42)

type dialogueFixture struct {
	service    *DialogueService
	sessions   *session.MemoryStore
	contests   *testutil.FakeContestRepository
	autoAccept *testutil.MockAutoAcceptRepository
	gateway    *testutil.MockGateway
}

func newDialogueFixture() *dialogueFixture {
	f := &dialogueFixture{
		sessions:   session.NewMemoryStore(time.Hour),
		contests:   testutil.NewFakeContestRepository(),
		autoAccept: new(testutil.MockAutoAcceptRepository),
		gateway:    new(testutil.MockGateway),
	}
	f.service = NewDialogueService(f.sessions, f.contests, f.autoAccept, f.gateway, "contest_bot", testutil.NewTestLogger())
	return f
}

func (f *dialogueFixture) step(t *testing.T) domain.Step {
	step, err := f.service.Step(testUser)
	require.NoError(t, err)
	return step
}

func (f *dialogueFixture) text(t *testing.T, text string) Reply {
	reply, handled, err := f.service.HandleText(testUser, text)
	require.NoError(t, err)
	require.True(t, handled)
	return reply
}

func TestDialogueService_CreateButtonContest(t *testing.T) {
	f := newDialogueFixture()
	f.gateway.On("IsBotAdmin", "@demo").Return(true, nil)
	f.gateway.On("PublishButton", "@demo", "Конкурс: Spring Draw", "Join (0)", "contest_1").
		Return(domain.MessageRef{ChatID: -100, MessageID: "1"}, nil)

	reply, err := f.service.Begin(testUser)
	require.NoError(t, err)
	assert.Equal(t, KeyboardContestTypes, reply.Keyboard)
	assert.Equal(t, domain.StepSelectType, f.step(t))

	_, err = f.service.SelectType(testUser, domain.ContestTypeButton)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitChannelID, f.step(t))

	reply = f.text(t, "demo")
	assert.Equal(t, KeyboardShowCount, reply.Keyboard)
	assert.Equal(t, domain.StepAwaitShowCount, f.step(t))

	_, err = f.service.ChooseShowCount(testUser, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitName, f.step(t))

	f.text(t, "Spring Draw")
	assert.Equal(t, domain.StepAwaitButtonText, f.step(t))

	reply = f.text(t, "Join")
	assert.Contains(t, reply.Text, "Spring Draw")
	assert.Contains(t, reply.Text, "@contest_bot?start=1")
	assert.NotContains(t, reply.Text, textPublishFailed)
	assert.Equal(t, domain.StepIdle, f.step(t))

	contest, err := f.contests.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Spring Draw", contest.Name)
	assert.Equal(t, "Join", contest.ButtonText)
	assert.Equal(t, domain.ContestTypeButton, contest.Type)
	assert.Equal(t, "demo", contest.ChannelID)
	assert.True(t, contest.ShowCount)
	assert.True(t, contest.Active)
	assert.Equal(t, 0, contest.ParticipantCount)

	f.gateway.AssertExpectations(t)
}

func TestDialogueService_CommentContestAsksForPostLink(t *testing.T) {
	f := newDialogueFixture()
	f.gateway.On("IsBotAdmin", "@demo").Return(true, nil)
	f.gateway.On("PublishButton", "@demo", "Конкурс: Comments", "Go", "contest_1").
		Return(domain.MessageRef{}, nil)

	_, err := f.service.SelectType(testUser, domain.ContestTypeComment)
	require.NoError(t, err)

	reply := f.text(t, "@demo")
	assert.Equal(t, textAskPostLink, reply.Text)
	assert.Equal(t, domain.StepAwaitPostLink, f.step(t))

	reply = f.text(t, "https://t.me/demo/15")
	assert.Equal(t, KeyboardShowCount, reply.Keyboard)

	_, err = f.service.ChooseShowCount(testUser, false)
	require.NoError(t, err)
	f.text(t, "Comments")
	f.text(t, "Go")

	contest, err := f.contests.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/demo/15", contest.PostLink)
	assert.False(t, contest.ShowCount)
}

func TestDialogueService_ChannelRejected(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		setupGateway  func(g *testutil.MockGateway)
		expectedReply string
	}{
		{
			name:  "bot is not an administrator",
			input: "demo",
			setupGateway: func(g *testutil.MockGateway) {
				g.On("IsBotAdmin", "@demo").Return(false, nil)
			},
			expectedReply: textBotNotAdmin,
		},
		{
			name:  "channel cannot be resolved",
			input: "@missing_channel",
			setupGateway: func(g *testutil.MockGateway) {
				g.On("IsBotAdmin", "@missing_channel").Return(false, fmt.Errorf("chat not found"))
			},
			expectedReply: textInvalidChannel,
		},
		{
			name:          "malformed identifier",
			input:         "not a channel",
			setupGateway:  func(g *testutil.MockGateway) {},
			expectedReply: textInvalidChannel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDialogueFixture()
			tt.setupGateway(f.gateway)

			_, err := f.service.SelectType(testUser, domain.ContestTypeButton)
			require.NoError(t, err)

			reply := f.text(t, tt.input)

			assert.Equal(t, tt.expectedReply, reply.Text)
			assert.Equal(t, domain.StepAwaitChannelID, f.step(t))

			list, _ := f.contests.ListActive()
			assert.Empty(t, list)
			f.gateway.AssertExpectations(t)
		})
	}
}

func TestDialogueService_NumericChannelID(t *testing.T) {
	f := newDialogueFixture()
	f.gateway.On("IsBotAdmin", "-1001234567890").Return(true, nil)

	_, err := f.service.SelectType(testUser, domain.ContestTypeVoice)
	require.NoError(t, err)

	f.text(t, "-1001234567890")

	sess, err := f.sessions.Get(testUser)
	require.NoError(t, err)
	assert.Equal(t, "-1001234567890", sess.Contest.ChannelID)
	assert.Equal(t, domain.StepAwaitShowCount, sess.Step)
}

func TestDialogueService_EmptyValuesReprompt(t *testing.T) {
	f := newDialogueFixture()
	require.NoError(t, f.sessions.Put(testUser, domain.NewContestSession(domain.StepAwaitName, domain.ContestDraft{
		Type:      domain.ContestTypeButton,
		ChannelID: "demo",
	})))

	reply := f.text(t, "   ")
	assert.Equal(t, textEmptyValue, reply.Text)
	assert.Equal(t, domain.StepAwaitName, f.step(t))
}

func TestDialogueService_Cancel(t *testing.T) {
	steps := []domain.Step{
		domain.StepSelectType,
		domain.StepAwaitChannelID,
		domain.StepAwaitShowCount,
		domain.StepAwaitName,
		domain.StepAwaitButtonText,
	}

	for _, step := range steps {
		t.Run(string(step), func(t *testing.T) {
			f := newDialogueFixture()
			require.NoError(t, f.sessions.Put(testUser, domain.NewContestSession(step, domain.ContestDraft{
				Type:      domain.ContestTypeButton,
				ChannelID: "demo",
			})))

			reply, err := f.service.Cancel(testUser)

			require.NoError(t, err)
			assert.Equal(t, textCancelled, reply.Text)
			assert.Equal(t, domain.StepIdle, f.step(t))
		})
	}
}

func TestDialogueService_CancelWithoutSession(t *testing.T) {
	f := newDialogueFixture()

	reply, err := f.service.Cancel(testUser)

	require.NoError(t, err)
	assert.Equal(t, textNothingToCancel, reply.Text)
}

func TestDialogueService_CancelDuringAdminCheck(t *testing.T) {
	f := newDialogueFixture()

	_, err := f.service.SelectType(testUser, domain.ContestTypeButton)
	require.NoError(t, err)

	// The user cancels while the admin check is still in flight
	f.gateway.On("IsBotAdmin", "@demo").
		Run(func(args mock.Arguments) {
			_, cancelErr := f.service.Cancel(testUser)
			require.NoError(t, cancelErr)
		}).
		Return(true, nil)

	reply := f.text(t, "demo")

	assert.Empty(t, reply.Text)
	assert.Equal(t, domain.StepIdle, f.step(t))
}

func TestDialogueService_RestartDuringAdminCheck(t *testing.T) {
	f := newDialogueFixture()

	_, err := f.service.SelectType(testUser, domain.ContestTypeComment)
	require.NoError(t, err)

	// The user cancels and starts a different contest while the check is in flight
	f.gateway.On("IsBotAdmin", "@oldchan").
		Run(func(args mock.Arguments) {
			_, cancelErr := f.service.Cancel(testUser)
			require.NoError(t, cancelErr)
			_, selectErr := f.service.SelectType(testUser, domain.ContestTypeButton)
			require.NoError(t, selectErr)
		}).
		Return(true, nil)

	reply := f.text(t, "oldchan")
	assert.Empty(t, reply.Text)

	sess, err := f.sessions.Get(testUser)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, domain.StepAwaitChannelID, sess.Step)
	assert.Equal(t, domain.ContestTypeButton, sess.Contest.Type)
	assert.Empty(t, sess.Contest.ChannelID)
}

func TestDialogueService_ShowCountOutOfOrder(t *testing.T) {
	f := newDialogueFixture()
	_, err := f.service.SelectType(testUser, domain.ContestTypeButton)
	require.NoError(t, err)

	reply, err := f.service.ChooseShowCount(testUser, true)

	require.NoError(t, err)
	assert.Equal(t, textStepUnavailable, reply.Text)
	assert.Equal(t, domain.StepAwaitChannelID, f.step(t))
}

func TestDialogueService_TextWithoutDialogue(t *testing.T) {
	f := newDialogueFixture()

	_, handled, err := f.service.HandleText(testUser, "hello")

	assert.NoError(t, err)
	assert.False(t, handled)
}

func TestDialogueService_TextAtButtonStep(t *testing.T) {
	f := newDialogueFixture()
	_, err := f.service.Begin(testUser)
	require.NoError(t, err)

	_, handled, err := f.service.HandleText(testUser, "button_contest")

	assert.NoError(t, err)
	assert.False(t, handled)
}

func TestDialogueService_PublishFailureKeepsContest(t *testing.T) {
	f := newDialogueFixture()
	f.gateway.On("PublishButton", "@demo", "Конкурс: Spring Draw", "Join", "contest_1").
		Return(domain.MessageRef{}, fmt.Errorf("bot was kicked"))

	require.NoError(t, f.sessions.Put(testUser, domain.NewContestSession(domain.StepAwaitButtonText, domain.ContestDraft{
		Type:      domain.ContestTypeButton,
		ChannelID: "demo",
		Name:      "Spring Draw",
	})))

	reply := f.text(t, "Join")

	assert.Contains(t, reply.Text, textPublishFailed)
	assert.Equal(t, domain.StepIdle, f.step(t))

	contest, err := f.contests.Get(1)
	require.NoError(t, err)
	assert.True(t, contest.Active)
	f.gateway.AssertExpectations(t)
}

func TestDialogueService_CommitStorageFailure(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	repo := new(testutil.MockContestRepository)
	gateway := new(testutil.MockGateway)
	service := NewDialogueService(sessions, repo, new(testutil.MockAutoAcceptRepository), gateway, "contest_bot", testutil.NewTestLogger())

	draft := domain.ContestDraft{Type: domain.ContestTypeButton, ChannelID: "demo", Name: "Spring Draw"}
	require.NoError(t, sessions.Put(testUser, domain.NewContestSession(domain.StepAwaitButtonText, draft)))

	draft.ButtonText = "Join"
	repo.On("Create", draft).Return(int64(0), fmt.Errorf("connection refused")).Once()

	_, handled, err := service.HandleText(testUser, "Join")

	assert.True(t, handled)
	assert.Error(t, err)
	gateway.AssertNotCalled(t, "PublishButton", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Draft survives so the user can retry
	step, err := service.Step(testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitButtonText, step)

	repo.On("Create", draft).Return(int64(3), nil).Once()
	gateway.On("PublishButton", "@demo", "Конкурс: Spring Draw", "Join", "contest_3").
		Return(domain.MessageRef{ChatID: -100, MessageID: "7"}, nil)

	reply, handled, err := service.HandleText(testUser, "Join")

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, reply.Text, "Spring Draw")
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestDialogueService_DuplicateButtonTextDuringCommit(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	repo := new(testutil.MockContestRepository)
	gateway := new(testutil.MockGateway)
	service := NewDialogueService(sessions, repo, new(testutil.MockAutoAcceptRepository), gateway, "contest_bot", testutil.NewTestLogger())

	draft := domain.ContestDraft{Type: domain.ContestTypeButton, ChannelID: "demo", Name: "Spring Draw"}
	require.NoError(t, sessions.Put(testUser, domain.NewContestSession(domain.StepAwaitButtonText, draft)))

	// The same message is delivered again while the first insert is running
	var duplicate Reply
	var duplicateHandled bool
	draft.ButtonText = "Join"
	repo.On("Create", draft).
		Run(func(args mock.Arguments) {
			var dupErr error
			duplicate, duplicateHandled, dupErr = service.HandleText(testUser, "Join")
			require.NoError(t, dupErr)
		}).
		Return(int64(1), nil)
	gateway.On("PublishButton", "@demo", "Конкурс: Spring Draw", "Join", "contest_1").
		Return(domain.MessageRef{ChatID: -100, MessageID: "1"}, nil)

	reply, handled, err := service.HandleText(testUser, "Join")

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, reply.Text, "Spring Draw")
	assert.True(t, duplicateHandled)
	assert.Empty(t, duplicate.Text)
	repo.AssertNumberOfCalls(t, "Create", 1)
	gateway.AssertNumberOfCalls(t, "PublishButton", 1)

	step, err := service.Step(testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.StepIdle, step)
}

func TestDialogueService_AutoAcceptFlow(t *testing.T) {
	tests := []struct {
		name            string
		startMessage    string
		expectedMessage string
	}{
		{name: "with start message", startMessage: "Добро пожаловать!", expectedMessage: "Добро пожаловать!"},
		{name: "skipped start message", startMessage: "-", expectedMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDialogueFixture()
			f.gateway.On("IsBotAdmin", "@demo").Return(true, nil)
			f.autoAccept.On("Save", domain.AutoAcceptSettings{
				ChannelID:    "demo",
				StartMessage: tt.expectedMessage,
				CreatedBy:    testUser,
			}).Return(nil)

			_, err := f.service.BeginAutoAccept(testUser)
			require.NoError(t, err)
			assert.Equal(t, domain.StepAwaitAcceptChannel, f.step(t))

			reply := f.text(t, "demo")
			assert.Equal(t, textAskStartMessage, reply.Text)

			reply = f.text(t, tt.startMessage)
			assert.Equal(t, textAutoAcceptSaved, reply.Text)
			assert.Equal(t, domain.StepIdle, f.step(t))

			f.autoAccept.AssertExpectations(t)
		})
	}
}

func TestShareCode(t *testing.T) {
	assert.Equal(t, "@contest_bot?start=7", ShareCode("contest_bot", 7))
	assert.Equal(t, "", ShareCode("", 7))
}

func TestParseShareCode(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		expectedID int64
		expectedOK bool
	}{
		{name: "valid", text: "@contest_bot?start=7", expectedID: 7, expectedOK: true},
		{name: "case insensitive username", text: "@Contest_Bot?start=12", expectedID: 12, expectedOK: true},
		{name: "surrounding whitespace", text: "  @contest_bot?start=3 ", expectedID: 3, expectedOK: true},
		{name: "other bot", text: "@other_bot?start=7"},
		{name: "trailing garbage", text: "@contest_bot?start=7abc"},
		{name: "no id", text: "@contest_bot?start="},
		{name: "plain text", text: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseShareCode("contest_bot", tt.text)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}
