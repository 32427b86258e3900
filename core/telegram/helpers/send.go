package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/leadquiz/core/logger"
	"github.com/m3rciful/leadquiz/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// Passing nil makes the helpers send synchronously.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends text without a parse mode to the current chat.
func SendText(c tele.Context, text string) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text)
	})
}

// SendMD sends text with legacy Markdown formatting to the current chat.
// Callers escape user-provided fragments with format.Markdown.
func SendMD(c tele.Context, text string) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	return sendAsync(c, "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}
