package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contestbot/internal/domain"
	"contestbot/internal/repository"
	"contestbot/internal/session"

	"go.uber.org/zap"
)

// Keyboard tells the handler which inline keyboard to attach to a reply
type Keyboard string

const (
	KeyboardNone         Keyboard = ""
	KeyboardContestTypes Keyboard = "contest_types"
	KeyboardShowCount    Keyboard = "show_count"
)

// Reply is a message the dialogue wants to show the user.
// An empty Text means nothing should be sent.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

const (
	textSelectType       = "Выберите тип конкурса:"
	textAskChannel       = "Пожалуйста, добавьте бота в канал или группу и назначьте его администратором. Затем отправьте сюда ID канала или группы или ссылку на канал в формате @username."
	textInvalidChannel   = "Неверный ID канала или группы. Пожалуйста, отправьте корректный ID."
	textBotNotAdmin      = "Бот не является администратором этого канала или группы. Пожалуйста, добавьте бота в канал или группу и назначьте его администратором."
	textAskPostLink      = "Пожалуйста, отправьте ссылку на пост в канале."
	textAskShowCount     = "Отображать количество участников на кнопке?"
	textAskName          = "Пожалуйста, укажите название конкурса."
	textAskButtonText    = "Пожалуйста, укажите текст кнопки."
	textEmptyValue       = "Значение не может быть пустым. Попробуйте ещё раз."
	textCancelled        = "Операция отменена."
	textNothingToCancel  = "Нет активной операции."
	textStepUnavailable  = "Это действие сейчас недоступно. Начните заново через /start."
	textPublishFailed    = "Не удалось опубликовать кнопку в канале. Проверьте права бота и используйте код ниже, чтобы добавить кнопку вручную."
	textAskAcceptChannel = "Пожалуйста, отправьте ID канала или группы, заявки в который нужно принимать автоматически."
	textAskStartMessage  = "Пожалуйста, укажите стартовое сообщение для новых участников (или отправьте «-», чтобы пропустить)."
	textAutoAcceptSaved  = "Автоприем заявок на подписку создан."
)

// DialogueService drives the per-user creation dialogues
type DialogueService struct {
	sessions       session.Store
	contestRepo    repository.ContestRepository
	autoAcceptRepo repository.AutoAcceptRepository
	gateway        Gateway
	botUsername    string
	logger         *zap.Logger
}

// NewDialogueService creates a new dialogue service
func NewDialogueService(
	sessions session.Store,
	contestRepo repository.ContestRepository,
	autoAcceptRepo repository.AutoAcceptRepository,
	gateway Gateway,
	botUsername string,
	logger *zap.Logger,
) *DialogueService {
	return &DialogueService{
		sessions:       sessions,
		contestRepo:    contestRepo,
		autoAcceptRepo: autoAcceptRepo,
		gateway:        gateway,
		botUsername:    botUsername,
		logger:         logger,
	}
}

// Step returns the user's current dialogue step
func (s *DialogueService) Step(userID int64) (domain.Step, error) {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return domain.StepIdle, nil
	}
	return sess.Step, nil
}

// Begin opens the contest creation flow at type selection
func (s *DialogueService) Begin(userID int64) (Reply, error) {
	sess := domain.NewContestSession(domain.StepSelectType, domain.ContestDraft{})
	if err := s.sessions.Put(userID, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	return Reply{Text: textSelectType, Keyboard: KeyboardContestTypes}, nil
}

// SelectType stores the contest type and asks for the channel.
// Picking a type always starts a fresh draft, whatever came before.
func (s *DialogueService) SelectType(userID int64, contestType domain.ContestType) (Reply, error) {
	sess := domain.NewContestSession(domain.StepAwaitChannelID, domain.ContestDraft{Type: contestType})
	if err := s.sessions.Put(userID, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Contest type selected",
		zap.Int64("user_id", userID),
		zap.String("contest_type", string(contestType)),
	)
	return Reply{Text: textAskChannel}, nil
}

// BeginAutoAccept opens the auto-accept setup flow
func (s *DialogueService) BeginAutoAccept(userID int64) (Reply, error) {
	if err := s.sessions.Put(userID, domain.NewAutoAcceptSession()); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	return Reply{Text: textAskAcceptChannel}, nil
}

// ChooseShowCount stores the live count choice
func (s *DialogueService) ChooseShowCount(userID int64, show bool) (Reply, error) {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Flow != domain.FlowCreateContest || sess.Step != domain.StepAwaitShowCount {
		return Reply{Text: textStepUnavailable}, nil
	}

	next := sess.Clone()
	next.Contest.ShowCount = show
	next.Step = domain.StepAwaitName
	return s.advance(userID, sess.Revision, next, Reply{Text: textAskName})
}

// Cancel aborts whatever dialogue the user is in
func (s *DialogueService) Cancel(userID int64) (Reply, error) {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if err := s.sessions.Clear(userID); err != nil {
		return Reply{}, fmt.Errorf("clear session: %w", err)
	}
	if sess == nil {
		return Reply{Text: textNothingToCancel}, nil
	}

	s.logger.Info("Dialogue cancelled",
		zap.Int64("user_id", userID),
		zap.String("flow", string(sess.Flow)),
		zap.String("step", string(sess.Step)),
	)
	return Reply{Text: textCancelled}, nil
}

// HandleText feeds a free-text message into the user's dialogue.
// Returns false when the user has no dialogue expecting text.
func (s *DialogueService) HandleText(userID int64, text string) (Reply, bool, error) {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return Reply{}, true, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return Reply{}, false, nil
	}

	var reply Reply
	switch sess.Step {
	case domain.StepAwaitChannelID:
		reply, err = s.receiveChannel(userID, sess, text)
	case domain.StepAwaitPostLink:
		reply, err = s.receivePostLink(userID, sess, text)
	case domain.StepAwaitName:
		reply, err = s.receiveName(userID, sess, text)
	case domain.StepAwaitButtonText:
		reply, err = s.receiveButtonText(userID, sess, text)
	case domain.StepCommitting:
		// A duplicate of the message being committed
		return Reply{}, true, nil
	case domain.StepAwaitAcceptChannel:
		reply, err = s.receiveAcceptChannel(userID, sess, text)
	case domain.StepAwaitStartMessage:
		reply, err = s.receiveStartMessage(userID, sess, text)
	default:
		// Steps driven by buttons
		return Reply{}, false, nil
	}
	return reply, true, err
}

func (s *DialogueService) receiveChannel(userID int64, sess *domain.Session, text string) (Reply, error) {
	channelID, rejection := s.verifyChannel(userID, text)
	if rejection != "" {
		return Reply{Text: rejection}, nil
	}

	next := sess.Clone()
	next.Contest.ChannelID = channelID
	if next.Contest.Type.NeedsPostLink() {
		next.Step = domain.StepAwaitPostLink
		return s.advance(userID, sess.Revision, next, Reply{Text: textAskPostLink})
	}
	next.Step = domain.StepAwaitShowCount
	return s.advance(userID, sess.Revision, next, Reply{Text: textAskShowCount, Keyboard: KeyboardShowCount})
}

func (s *DialogueService) receivePostLink(userID int64, sess *domain.Session, text string) (Reply, error) {
	link := strings.TrimSpace(text)
	if link == "" {
		return Reply{Text: textEmptyValue}, nil
	}

	next := sess.Clone()
	next.Contest.PostLink = link
	next.Step = domain.StepAwaitShowCount
	return s.advance(userID, sess.Revision, next, Reply{Text: textAskShowCount, Keyboard: KeyboardShowCount})
}

func (s *DialogueService) receiveName(userID int64, sess *domain.Session, text string) (Reply, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return Reply{Text: textEmptyValue}, nil
	}

	next := sess.Clone()
	next.Contest.Name = name
	next.Step = domain.StepAwaitButtonText
	return s.advance(userID, sess.Revision, next, Reply{Text: textAskButtonText})
}

func (s *DialogueService) receiveButtonText(userID int64, sess *domain.Session, text string) (Reply, error) {
	buttonText := strings.TrimSpace(text)
	if buttonText == "" {
		return Reply{Text: textEmptyValue}, nil
	}

	if sess.Contest.ChannelID == "" {
		return Reply{}, errors.New("commit contest: channel is not set")
	}

	// Claim the session so a redelivered message cannot commit twice
	claimed := sess.Clone()
	claimed.Step = domain.StepCommitting
	ok, err := s.sessions.Swap(userID, sess.Revision, claimed)
	if err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	if !ok {
		s.logger.Info("Dropped stale contest commit", zap.Int64("user_id", userID))
		return Reply{}, nil
	}

	draft := *sess.Contest
	draft.ButtonText = buttonText
	return s.commit(userID, claimed.Revision, sess, draft)
}

// commit is the only durable side effect of the creation flow.
// The session must already be claimed at claimedRev; on failure it is
// put back to previous so the user can resend the button text.
func (s *DialogueService) commit(userID int64, claimedRev int64, previous *domain.Session, draft domain.ContestDraft) (Reply, error) {
	id, err := s.contestRepo.Create(draft)
	if err != nil {
		if _, restoreErr := s.sessions.Swap(userID, claimedRev, previous); restoreErr != nil {
			s.logger.Warn("Failed to restore session after failed commit",
				zap.Error(restoreErr),
				zap.Int64("user_id", userID),
			)
		}
		return Reply{}, fmt.Errorf("create contest: %w", err)
	}

	contest := &domain.Contest{
		ID:         id,
		Name:       draft.Name,
		ButtonText: draft.ButtonText,
		Type:       draft.Type,
		ChannelID:  draft.ChannelID,
		ShowCount:  draft.ShowCount,
		Active:     true,
		PostLink:   draft.PostLink,
	}

	s.logger.Info("Contest created",
		zap.Int64("user_id", userID),
		zap.Int64("contest_id", id),
		zap.String("contest_type", string(draft.Type)),
		zap.String("channel_id", draft.ChannelID),
	)

	if err := s.sessions.Clear(userID); err != nil {
		s.logger.Warn("Failed to clear session after commit", zap.Error(err), zap.Int64("user_id", userID))
	}

	text := fmt.Sprintf("Конкурс \"%s\" создан.\nКнопка будет автоматически добавлена.", draft.Name)

	_, err = s.gateway.PublishButton(
		domain.ChannelRef(draft.ChannelID),
		domain.PostText(draft.Name),
		domain.ButtonLabel(contest),
		domain.ContestPayload(id),
	)
	if err != nil {
		s.logger.Error("Failed to publish contest button",
			zap.Error(err),
			zap.Int64("contest_id", id),
			zap.String("channel_id", draft.ChannelID),
		)
		text += "\n\n" + textPublishFailed
	} else {
		s.logger.Info("Contest button published",
			zap.Int64("contest_id", id),
			zap.String("channel_id", draft.ChannelID),
		)
	}

	if code := ShareCode(s.botUsername, id); code != "" {
		text += "\n\nКод для вставки кнопки в другие чаты:\n" + code
	}
	return Reply{Text: text}, nil
}

func (s *DialogueService) receiveAcceptChannel(userID int64, sess *domain.Session, text string) (Reply, error) {
	channelID, rejection := s.verifyChannel(userID, text)
	if rejection != "" {
		return Reply{Text: rejection}, nil
	}

	next := sess.Clone()
	next.AutoAccept.ChannelID = channelID
	next.Step = domain.StepAwaitStartMessage
	return s.advance(userID, sess.Revision, next, Reply{Text: textAskStartMessage})
}

func (s *DialogueService) receiveStartMessage(userID int64, sess *domain.Session, text string) (Reply, error) {
	message := strings.TrimSpace(text)
	if message == "-" {
		message = ""
	}

	settings := domain.AutoAcceptSettings{
		ChannelID:    sess.AutoAccept.ChannelID,
		StartMessage: message,
		CreatedBy:    userID,
	}
	if err := s.autoAcceptRepo.Save(settings); err != nil {
		return Reply{}, fmt.Errorf("save auto-accept settings: %w", err)
	}

	if err := s.sessions.Clear(userID); err != nil {
		s.logger.Warn("Failed to clear session after auto-accept setup", zap.Error(err), zap.Int64("user_id", userID))
	}

	s.logger.Info("Auto-accept configured",
		zap.Int64("user_id", userID),
		zap.String("channel_id", settings.ChannelID),
	)
	return Reply{Text: textAutoAcceptSaved}, nil
}

// verifyChannel normalizes the input and checks the bot administers the
// channel. A non-empty rejection is the re-prompt text for the user.
func (s *DialogueService) verifyChannel(userID int64, text string) (string, string) {
	channelID, err := domain.NormalizeChannel(text)
	if err != nil {
		return "", textInvalidChannel
	}

	// Runs outside any session lock so /cancel stays responsive
	isAdmin, err := s.gateway.IsBotAdmin(domain.ChannelRef(channelID))
	if err != nil {
		s.logger.Warn("Failed to check bot admin status",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("channel_id", channelID),
		)
		return "", textInvalidChannel
	}
	if !isAdmin {
		return "", textBotNotAdmin
	}
	return channelID, ""
}

// advance applies a transition unless the session changed meanwhile
// (for example the user cancelled during a slow admin check).
func (s *DialogueService) advance(userID int64, revision int64, next *domain.Session, reply Reply) (Reply, error) {
	ok, err := s.sessions.Swap(userID, revision, next)
	if err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	if !ok {
		s.logger.Info("Dropped stale dialogue transition",
			zap.Int64("user_id", userID),
			zap.String("step", string(next.Step)),
		)
		return Reply{}, nil
	}
	return reply, nil
}

// ShareCode is the text that makes the bot repost a contest button in a chat
func ShareCode(botUsername string, contestID int64) string {
	if botUsername == "" {
		return ""
	}
	return fmt.Sprintf("@%s?start=%d", botUsername, contestID)
}

// ParseShareCode extracts the contest id from a share code message
func ParseShareCode(botUsername, text string) (int64, bool) {
	if botUsername == "" {
		return 0, false
	}
	prefix := strings.ToLower(fmt.Sprintf("@%s?start=", botUsername))
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(text), prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(text[len(prefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
