package handler

import (
	"contestbot/internal/domain"
	"contestbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const textInternalError = "Произошла ошибка. Попробуйте позже."

// Handler manages all bot interactions
type Handler struct {
	bot           *tele.Bot
	dialogue      *service.DialogueService
	participation *service.ParticipationService
	contests      *service.ContestService
	autoAccept    *service.AutoAcceptService
	subscription  service.SubscriptionChecker
	gateway       service.Gateway
	botUsername   string
	logger        *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	dialogue *service.DialogueService,
	participation *service.ParticipationService,
	contests *service.ContestService,
	autoAccept *service.AutoAcceptService,
	subscription service.SubscriptionChecker,
	gateway service.Gateway,
	botUsername string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		dialogue:      dialogue,
		participation: participation,
		contests:      contests,
		autoAccept:    autoAccept,
		subscription:  subscription,
		gateway:       gateway,
		botUsername:   botUsername,
		logger:        logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/cancel", h.handleCancel)
	h.bot.Handle("/auto_accept", h.handleAutoAccept)
	h.bot.Handle("/list_contests", h.handleListContests)
	h.bot.Handle("/edit_contest", h.handleEditContest)
	h.bot.Handle("/archive_contest", h.handleArchiveContest)
	h.bot.Handle("/export_statistics", h.handleExportStatistics)
	h.bot.Handle("/check_subscription", h.handleCheckSubscription)

	// Text messages and channel posts
	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnChannelPost, h.handleChannelPost)

	// Join requests for auto-accept channels
	h.bot.Handle(tele.OnChatJoinRequest, h.handleJoinRequest)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnStartContest, h.handleBeginContest)
	h.bot.Handle(&btnFAQ, h.handleFAQ)
	h.bot.Handle(&btnContacts, h.handleContacts)
	h.bot.Handle(&btnShowCountYes, h.handleShowCount(true))
	h.bot.Handle(&btnShowCountNo, h.handleShowCount(false))
	for _, btn := range contestTypeButtons {
		btn := btn
		h.bot.Handle(&btn, h.handleSelectType(domain.ContestType(btn.Unique)))
	}

	// Contest entry buttons carry dynamic data and land here
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// Inline keyboard buttons
var (
	btnStartContest = tele.Btn{
		Unique: "start_contest",
		Text:   "🎁 Начать конкурс",
	}
	btnFAQ = tele.Btn{
		Unique: "faq",
		Text:   "❓ Частые вопросы",
	}
	btnContacts = tele.Btn{
		Unique: "contacts",
		Text:   "📞 Контакты",
	}
	btnShowCountYes = tele.Btn{
		Unique: "show_count_yes",
		Text:   "Да",
	}
	btnShowCountNo = tele.Btn{
		Unique: "show_count_no",
		Text:   "Нет",
	}
)

// contestTypeButtons has one button per contest type, keyed by the type itself
var contestTypeButtons = func() []tele.Btn {
	buttons := make([]tele.Btn, 0, len(domain.ContestTypes))
	for _, t := range domain.ContestTypes {
		buttons = append(buttons, tele.Btn{Unique: string(t), Text: t.Title()})
	}
	return buttons
}()

// mainMenuMarkup returns the start menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnStartContest),
		menu.Row(btnFAQ),
		menu.Row(btnContacts),
	)
	return menu
}

// keyboardMarkup maps a dialogue keyboard to telebot markup
func keyboardMarkup(k service.Keyboard) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	switch k {
	case service.KeyboardContestTypes:
		rows := make([]tele.Row, 0, len(contestTypeButtons))
		for _, btn := range contestTypeButtons {
			rows = append(rows, markup.Row(btn))
		}
		markup.Inline(rows...)
	case service.KeyboardShowCount:
		markup.Inline(markup.Row(btnShowCountYes, btnShowCountNo))
	default:
		return nil
	}
	return markup
}

// sendReply delivers a dialogue reply; empty replies are dropped
func (h *Handler) sendReply(c tele.Context, reply service.Reply) error {
	if reply.Text == "" {
		return nil
	}
	if markup := keyboardMarkup(reply.Keyboard); markup != nil {
		return c.Send(reply.Text, markup)
	}
	return c.Send(reply.Text)
}
