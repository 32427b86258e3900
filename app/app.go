// Package app wires configuration, storage, the quiz flow and the Telegram
// transport into a runnable bot.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/leadquiz/app/handlers"
	"github.com/m3rciful/leadquiz/app/leads"
	"github.com/m3rciful/leadquiz/app/leads/migrations"
	"github.com/m3rciful/leadquiz/app/notify"
	"github.com/m3rciful/leadquiz/app/quiz"
	"github.com/m3rciful/leadquiz/core/bootstrap"
	corecmd "github.com/m3rciful/leadquiz/core/cmd"
	"github.com/m3rciful/leadquiz/core/logger"
	tg "github.com/m3rciful/leadquiz/core/telegram"
	"github.com/m3rciful/leadquiz/core/telegram/router"
	"github.com/m3rciful/leadquiz/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// App is the assembled lead quiz bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	sessions *state.Store
	notifier *notify.Notifier
	flow     *quiz.Flow
	handlers *handlers.Handlers
}

// Bootstrap initializes logging and storage and builds the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	src, err := migrations.For(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: src,
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB)
}

// New builds the application on an open database.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	sessions := state.NewStore()
	notifier := notify.New(nil, notify.WithParallelism(cfg.Quiz.NotifyParallelism))
	flow, err := quiz.New(quiz.Options{
		Questions:     quiz.Questions,
		Sessions:      sessions,
		Store:         leads.NewStore(db, len(quiz.Questions)),
		Notifier:      notifier,
		Admins:        cfg.Telegram.AdminIDs,
		StoreTimeout:  cfg.Database.Timeout,
		NotifyTimeout: cfg.Quiz.NotifyTimeout,
		StatsTTL:      cfg.Quiz.StatsCacheTTL,
	})
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		notifier: notifier,
		flow:     flow,
		handlers: handlers.New(flow),
	}, nil
}

// TelegramRunOptions describes routes and lifecycle hooks for the bot runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.handlers.Register(reg, a.cfg.Quiz.Keyword)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		Admins:        a.cfg.Telegram.AdminIDs,
		OnAdminReject: a.handlers.Fallback,
	})
	routes = append(routes, router.TextRoutes(a.handlers, reg, router.TextOptions{})...)

	if len(a.cfg.Telegram.AdminIDs) == 0 {
		logger.Warn(context.Background(), "app", "config.admins", slog.String("reason", "empty_roster"))
	}

	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.notifier.SetSender(BotSender(rt.Bot))
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			a.notifier.SetSender(nil)
			logger.Info(ctx, "app", "sessions.dropped", slog.Int("active", a.sessions.Len()))
			return nil
		},
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// BotSender adapts a telebot bot to the notifier's delivery function.
func BotSender(bot *tele.Bot) notify.SendFunc {
	if bot == nil {
		return nil
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	return func(_ context.Context, chatID int64, text string) error {
		_, err := bot.Send(tele.ChatID(chatID), text, opts)
		return err
	}
}
