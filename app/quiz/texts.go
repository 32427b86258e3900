package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/leadquiz/core/telegram/format"
)

// User-facing texts. All of them are sent with the legacy Markdown parse
// mode; anything typed by a user is escaped before it is embedded.
const (
	GreetingText = "👋 *Привет!*\n\n" +
		"Я бот Lead Quiz под брендом *Вячеслав Ветошкин*.\n\n" +
		"📝 Напишите /quiz или просто «квиз» чтобы начать.\n" +
		"❓ Напишите /help для списка команд."

	HelpText = "🤖 *Lead Quiz Bot — Вячеслав Ветошкин*\n\n" +
		"Доступные команды:\n" +
		"/start — запуск бота\n" +
		"/help — помощь\n" +
		"/quiz — начать квиз\n" +
		"/cancel — отменить квиз"

	CancelledText       = "✅ Квиз отменён. Напишите /quiz чтобы начать заново."
	NothingToCancelText = "❌ Нет активного квиза для отмены."
	FallbackText        = "❌ Команда не распознана.\nНапишите /help для списка команд."
	StatsFailedText     = "⚠️ Не удалось получить статистику, попробуйте позже."

	noUsername = "не указан"
)

// IntroText opens a quiz and asks the first question.
func IntroText(questions []string) string {
	return fmt.Sprintf("📝 *Начинаем квиз из %d вопросов!*\n\n"+
		"Вы можете отменить в любой момент командой /cancel\n\n%s", len(questions), questions[0])
}

// Summary pairs every question with its answer, in order.
func Summary(questions, answers []string) string {
	lines := make([]string, 0, len(questions))
	for i, q := range questions {
		var a string
		if i < len(answers) {
			a = format.Markdown(answers[i])
		}
		lines = append(lines, q+"\n   ↳ "+a)
	}
	return strings.Join(lines, "\n\n")
}

// ThankYouText is the final reply to the respondent.
func ThankYouText(summary string) string {
	return "✅ *Спасибо за ответы!*\n\n" +
		"Ваши ответы:\n\n" + summary + "\n\n" +
		"Мы свяжемся с вами в ближайшее время! 🚀"
}

// LeadText is the notification sent to administrators.
func LeadText(r Respondent, summary string) string {
	name := noUsername
	if r.Username != "" {
		name = "@" + format.Markdown(r.Username)
	}
	return "🆕 *Новый лид!*\n\n" +
		"👤 User ID: `" + strconv.FormatInt(r.UserID, 10) + "`\n" +
		"📛 Username: " + name + "\n\n" +
		"📋 *Ответы:*\n\n" + summary
}

// StatsText reports the number of stored leads.
func StatsText(count, active int) string {
	return fmt.Sprintf("📊 *Статистика*\n\nЛидов сохранено: %d\nКвизов в процессе: %d", count, active)
}
