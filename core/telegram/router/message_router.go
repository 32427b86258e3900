package router

import (
	"time"

	tg "github.com/m3rciful/leadquiz/core/telegram"
	tghelpers "github.com/m3rciful/leadquiz/core/telegram/helpers"
	"github.com/m3rciful/leadquiz/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the part of a dialog engine the text router needs.
type Conversation interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the plain-text route. Precedence: an active conversation
// consumes the message, then keyword triggers, then commands typed without
// the bot menu, then the registry fallback.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if conv != nil && conv.InProgress(tghelpers.SenderID(c)) {
			return handleWithSummary(c, "conversation", start, func() error {
				return conv.Handle(c)
			})
		}

		if reg != nil {
			if t, ok := reg.MatchTrigger(text); ok {
				return handleWithSummary(c, normalizeHandlerName(t.Name), start, func() error {
					return t.Handler(c)
				})
			}
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	h := middleware.MessageMetricsMiddleware(handler)
	h = middleware.LoggerMiddleware(h)
	h = middleware.RecoverMiddleware(h)
	return []tg.Route{{Endpoint: tele.OnText, Handler: h}}
}
