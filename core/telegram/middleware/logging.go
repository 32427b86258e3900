package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/leadquiz/core/logger"
	tghelpers "github.com/m3rciful/leadquiz/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const dedupWindow = 10 * time.Second

// updateSeen remembers recently logged update ids so the receipt line is
// written once even when the middleware is applied on several branches.
type updateSeen struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

var recent = &updateSeen{seen: make(map[int]time.Time)}

func (u *updateSeen) first(updateID int, now time.Time) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for id, ts := range u.seen {
		if now.Sub(ts) > dedupWindow {
			delete(u.seen, id)
		}
	}
	if _, ok := u.seen[updateID]; ok {
		return false
	}
	u.seen[updateID] = now
	return true
}

// LoggerMiddleware stamps the update with a request id and writes one
// sampled debug receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()

		if logger.ShouldSampleDebug() && recent.first(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil {
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}
			if upd.Message != nil {
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}
