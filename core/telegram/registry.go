package telegram

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/leadquiz/core/logger"
	"github.com/m3rciful/leadquiz/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Trigger starts a handler when a plain-text message contains Keyword.
type Trigger struct {
	Keyword string
	Name    string
	Handler tele.HandlerFunc
}

// Registry holds bot commands, keyword triggers and the text fallback.
type Registry struct {
	commands     map[string]commands.Command
	triggers     []Trigger
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

func skip(event, name, reason string) {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event,
		slog.String("name", name),
		slog.String("reason", reason),
	)
}

// RegisterCommand adds a slash command. Invalid or duplicate registrations
// are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	switch {
	case r == nil || name == "" || cmd.Handler == nil || cmd.Description == "":
		skip("register.command.skip", name, "invalid")
	case name[0] != '/':
		skip("register.command.skip", name, "no_slash_prefix")
	default:
		if _, exists := r.commands[name]; exists {
			skip("register.command.skip", name, "duplicate")
			return
		}
		r.commands[name] = cmd
	}
}

// RegisterTrigger adds a keyword trigger. Matching is case-insensitive.
func (r *Registry) RegisterTrigger(t Trigger) {
	t.Keyword = strings.ToLower(strings.TrimSpace(t.Keyword))
	if r == nil || t.Keyword == "" || t.Handler == nil {
		skip("register.trigger.skip", t.Name, "invalid")
		return
	}
	if t.Name == "" {
		t.Name = "trigger_" + t.Keyword
	}
	r.triggers = append(r.triggers, t)
}

// MatchTrigger returns the first trigger whose keyword occurs in text.
func (r *Registry) MatchTrigger(text string) (Trigger, bool) {
	if r == nil {
		return Trigger{}, false
	}
	lower := strings.ToLower(text)
	for _, t := range r.triggers {
		if strings.Contains(lower, t.Keyword) {
			return t, true
		}
	}
	return Trigger{}, false
}

// ListCommands returns the commands sorted by name, optionally dropping
// hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand finds a command by name with or without the leading slash.
// A bot mention suffix ("/quiz@my_bot") is ignored.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, " @"); i >= 0 {
		name = name[:i]
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[name]
	return name, cmd, ok
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets the handler for text nothing else claims.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// commandSetter is the part of *tele.Bot used to publish the command menu.
type commandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the visible commands as the bot's command menu.
func InitBotCommands(bot commandSetter, reg *Registry) error {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("commands", len(list)),
	)
	return nil
}

// SetupCommands publishes the command menu. Failure is logged and ignored:
// commands keep working without the menu.
func SetupCommands(bot commandSetter, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	_ = InitBotCommands(bot, reg)
}
