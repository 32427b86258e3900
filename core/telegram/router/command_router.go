package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/leadquiz/core/config"
	"github.com/m3rciful/leadquiz/core/logger"
	tg "github.com/m3rciful/leadquiz/core/telegram"
	"github.com/m3rciful/leadquiz/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Admins        config.AdminIDs
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns every registered command into a route wrapped with
// recovery, request logging and a per-handler summary line. Admin-only
// commands are additionally gated by the roster.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{Admins: opts.Admins, OnReject: opts.OnAdminReject}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		handlerName := normalizeHandlerName(name)
		inner := def.Handler
		h := func(c tele.Context) error {
			return handleWithSummary(c, handlerName, time.Now(), func() error { return inner(c) })
		}
		if def.AdminOnly {
			h = middleware.WithAdminCheck(adminOpts, h)
		}
		h = middleware.MessageMetricsMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		h = middleware.RecoverMiddleware(h)
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands.wired"),
		slog.Int("commands", len(routes)),
	)
	return routes
}
