// Package handlers binds the quiz flow to Telegram updates.
package handlers

import (
	"log/slog"

	"github.com/m3rciful/leadquiz/app/quiz"
	"github.com/m3rciful/leadquiz/core/logger"
	tg "github.com/m3rciful/leadquiz/core/telegram"
	"github.com/m3rciful/leadquiz/core/telegram/commands"
	tghelpers "github.com/m3rciful/leadquiz/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Handlers exposes the bot's command and text handlers.
type Handlers struct {
	flow *quiz.Flow
}

// New builds the handlers around flow.
func New(flow *quiz.Flow) *Handlers {
	return &Handlers{flow: flow}
}

// Register adds the bot's commands, the quiz keyword trigger and the text
// fallback to reg. An empty keyword disables the trigger.
func (h *Handlers) Register(reg *tg.Registry, keyword string) {
	reg.RegisterCommand("/start", commands.Command{Handler: h.Start, Description: "Запуск бота"})
	reg.RegisterCommand("/help", commands.Command{Handler: h.Help, Description: "Помощь"})
	reg.RegisterCommand("/quiz", commands.Command{Handler: h.Quiz, Description: "Начать квиз"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: h.Cancel, Description: "Отменить квиз"})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Stats,
		Description: "Статистика лидов",
		AdminOnly:   true,
		Hidden:      true,
	})
	if keyword != "" {
		reg.RegisterTrigger(tg.Trigger{Keyword: keyword, Name: "quiz_keyword", Handler: h.Quiz})
	}
	reg.SetTextFallback(h.Fallback)
}

// Start greets the user. It does not touch quiz progress.
func (h *Handlers) Start(c tele.Context) error {
	return tghelpers.SendMD(c, quiz.GreetingText)
}

// Help lists the public commands.
func (h *Handlers) Help(c tele.Context) error {
	return tghelpers.SendMD(c, quiz.HelpText)
}

// Quiz starts or restarts the questionnaire.
func (h *Handlers) Quiz(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply := h.flow.Start(ctx, tghelpers.SenderID(c))
	return tghelpers.SendMD(c, reply.Text)
}

// Cancel aborts the questionnaire.
func (h *Handlers) Cancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply := h.flow.Cancel(ctx, tghelpers.SenderID(c))
	return tghelpers.SendMD(c, reply.Text)
}

// Stats reports lead counters to an administrator.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	leads, active, err := h.flow.Stats(ctx)
	if err != nil {
		logger.Error(ctx, "handlers", "stats", slog.String("err", err.Error()))
		return tghelpers.SendMD(c, quiz.StatsFailedText)
	}
	return tghelpers.SendMD(c, quiz.StatsText(leads, active))
}

// Fallback answers text that matched nothing else.
func (h *Handlers) Fallback(c tele.Context) error {
	return tghelpers.SendMD(c, quiz.FallbackText)
}

// InProgress reports whether the sender is answering the quiz.
func (h *Handlers) InProgress(userID int64) bool {
	return h.flow.InProgress(userID)
}

// Handle treats the message as the answer to the current question.
func (h *Handlers) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r := quiz.Respondent{UserID: tghelpers.SenderID(c)}
	if u := c.Sender(); u != nil {
		r.Username = u.Username
	}
	return h.flow.Submit(ctx, r, c.Text(), func(reply quiz.Reply) error {
		return tghelpers.SendMD(c, reply.Text)
	})
}
