package domain

import "time"

// Flow identifies which dialogue a user is in
type Flow string

const (
	FlowCreateContest Flow = "create_contest"
	FlowAutoAccept    Flow = "auto_accept"
)

// Step is a position inside a dialogue flow
type Step string

// Contest creation steps
const (
	StepSelectType      Step = "select_type"
	StepAwaitChannelID  Step = "await_channel_id"
	StepAwaitPostLink   Step = "await_post_link"
	StepAwaitShowCount  Step = "await_show_count"
	StepAwaitName       Step = "await_name"
	StepAwaitButtonText Step = "await_button_text"
	// StepCommitting holds the session while the contest is being saved
	StepCommitting      Step = "committing"
)

// Auto-accept setup steps
const (
	StepAwaitAcceptChannel Step = "await_accept_channel"
	StepAwaitStartMessage  Step = "await_start_message"
)

// StepIdle means no dialogue is in progress
const StepIdle Step = "idle"

// Session is the ephemeral dialogue state of one user.
// Contest is set only for FlowCreateContest, AutoAccept only for FlowAutoAccept.
type Session struct {
	Flow       Flow             `json:"flow"`
	Step       Step             `json:"step"`
	Revision   int64            `json:"revision"`
	Contest    *ContestDraft    `json:"contest,omitempty"`
	AutoAccept *AutoAcceptDraft `json:"auto_accept,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Contest != nil {
		c := *s.Contest
		cp.Contest = &c
	}
	if s.AutoAccept != nil {
		a := *s.AutoAccept
		cp.AutoAccept = &a
	}
	return &cp
}

// NewContestSession starts a creation dialogue at the given step
func NewContestSession(step Step, draft ContestDraft) *Session {
	return &Session{
		Flow:    FlowCreateContest,
		Step:    step,
		Contest: &draft,
	}
}

// NewAutoAcceptSession starts an auto-accept setup dialogue
func NewAutoAcceptSession() *Session {
	return &Session{
		Flow:       FlowAutoAccept,
		Step:       StepAwaitAcceptChannel,
		AutoAccept: &AutoAcceptDraft{},
	}
}
