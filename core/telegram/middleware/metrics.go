package middleware

import tele "gopkg.in/telebot.v4"

const messagesKey = "messages"

// countingContext counts successful replies sent while handling an update.
type countingContext struct{ tele.Context }

func (m countingContext) inc() {
	n, _ := m.Get(messagesKey).(int)
	m.Set(messagesKey, n+1)
}

// Send proxies tele.Context.Send and counts successful sends.
func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.inc()
	}
	return err
}

// Reply proxies tele.Context.Reply and counts successful replies.
func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.inc()
	}
	return err
}

// MessageMetricsMiddleware wraps the context so handlers' replies are counted.
// The count is read back with MessageCount for the handler summary log line.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(messagesKey, 0)
		return next(countingContext{Context: c})
	}
}

// MessageCount returns how many replies were sent so far for this update.
// Sends handed to the async dispatcher are counted when they complete.
func MessageCount(c tele.Context) int {
	n, _ := c.Get(messagesKey).(int)
	return n
}
