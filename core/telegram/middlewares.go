package telegram

import (
	"github.com/m3rciful/leadquiz/core/telegram/middleware"
)

// DefaultMiddlewares builds the global chain applied via bot.Use. Routes
// built by the router package carry their own wrappers; the logger
// middleware deduplicates by update id so nothing is logged twice.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
}
