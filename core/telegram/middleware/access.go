package middleware

import (
	"github.com/m3rciful/leadquiz/core/config"
	tghelpers "github.com/m3rciful/leadquiz/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Admins   config.AdminIDs
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(c tele.Context) bool {
	return o.Admins.Contains(tghelpers.SenderID(c))
}

func (o AdminOptions) reject(c tele.Context) error {
	if o.OnReject != nil {
		return o.OnReject(c)
	}
	return nil
}

// WithAdminCheck wraps h so that only roster members reach it.
// An empty roster rejects everyone.
func WithAdminCheck(opts AdminOptions, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !opts.allowed(c) {
			return opts.reject(c)
		}
		return h(c)
	}
}

// AdminOnlyMiddleware is the middleware form of WithAdminCheck.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return WithAdminCheck(opts, next)
	}
}
