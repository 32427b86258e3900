package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly restricts the command to the configured admin roster.
	AdminOnly bool
	// Hidden keeps the command out of the Telegram command menu.
	Hidden bool
}
