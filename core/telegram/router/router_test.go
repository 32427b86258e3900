package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/m3rciful/leadquiz/core/config"
	tg "github.com/m3rciful/leadquiz/core/telegram"
	"github.com/m3rciful/leadquiz/core/telegram/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	text  string
	user  *tele.User
	store map[string]any
	sent  []any
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{text: text, user: &tele.User{ID: userID}, store: map[string]any{}}
}

func (f *fakeContext) Text() string { return f.text }
func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat { return &tele.Chat{ID: f.user.ID, Type: tele.ChatPrivate} }
func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 7} }
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }
func (f *fakeContext) Send(what any, _ ...any) error { f.sent = append(f.sent, what); return nil }

type fakeConversation struct {
	active  map[int64]bool
	handled []string
}

func (f *fakeConversation) InProgress(userID int64) bool { return f.active[userID] }
func (f *fakeConversation) Handle(c tele.Context) error {
	f.handled = append(f.handled, c.Text())
	return nil
}

func recordingHandler(name string, calls *[]string) tele.HandlerFunc {
	return func(tele.Context) error {
		*calls = append(*calls, name)
		return nil
	}
}

func textHandler(t *testing.T, conv Conversation, reg *tg.Registry) tele.HandlerFunc {
	routes := TextRoutes(conv, reg, TextOptions{})
	require.Len(t, routes, 1)
	assert.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestTextRoutesPrecedence(t *testing.T) {
	var calls []string
	reg := tg.NewRegistry()
	reg.RegisterTrigger(tg.Trigger{Keyword: "квиз", Name: "quiz_keyword", Handler: recordingHandler("trigger", &calls)})
	reg.RegisterCommand("/help", commands.Command{Handler: recordingHandler("help", &calls), Description: "help"})
	reg.SetTextFallback(recordingHandler("fallback", &calls))

	conv := &fakeConversation{active: map[int64]bool{1: true}}
	h := textHandler(t, conv, reg)

	require.NoError(t, h(newFakeContext(1, "квиз")))
	assert.Equal(t, []string{"квиз"}, conv.handled)
	assert.Empty(t, calls)

	require.NoError(t, h(newFakeContext(2, "Давай КВИЗ")))
	require.NoError(t, h(newFakeContext(2, "help")))
	require.NoError(t, h(newFakeContext(2, "что это?")))
	assert.Equal(t, []string{"trigger", "help", "fallback"}, calls)
}

func TestTextRoutesRecoversPanics(t *testing.T) {
	reg := tg.NewRegistry()
	reg.SetTextFallback(func(tele.Context) error { panic("boom") })
	h := textHandler(t, nil, reg)
	assert.Error(t, h(newFakeContext(3, "hi")))
}

func TestTextRoutesWithoutHandlers(t *testing.T) {
	h := textHandler(t, nil, nil)
	assert.NoError(t, h(newFakeContext(3, "hi")))
}

func TestCommandRoutesAdminGate(t *testing.T) {
	var calls []string
	reg := tg.NewRegistry()
	reg.RegisterCommand("/stats", commands.Command{Handler: recordingHandler("stats", &calls), Description: "stats", AdminOnly: true})
	reg.RegisterCommand("/help", commands.Command{Handler: recordingHandler("help", &calls), Description: "help"})

	rejected := 0
	routes := CommandRoutes(reg, CommandRouteOptions{
		Admins:        config.AdminIDs{42},
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	})
	require.Len(t, routes, 2)

	byName := map[any]tele.HandlerFunc{}
	for _, r := range routes {
		byName[r.Endpoint] = r.Handler
	}

	require.NoError(t, byName["/stats"](newFakeContext(1, "/stats")))
	assert.Equal(t, 1, rejected)
	assert.Empty(t, calls)

	require.NoError(t, byName["/stats"](newFakeContext(42, "/stats")))
	require.NoError(t, byName["/help"](newFakeContext(1, "/help")))
	assert.Equal(t, []string{"stats", "help"}, calls)

	assert.Nil(t, CommandRoutes(nil, CommandRouteOptions{}))
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "lead save" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "", deriveErrorCode(nil))
	assert.Equal(t, "LEAD_SAVE", deriveErrorCode(fmt.Errorf("wrap: %w", codedErr{})))
	assert.Equal(t, "PLAINERR", deriveErrorCode(fmt.Errorf("wrap: %w", &plainErr{})))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "quiz", normalizeHandlerName("/Quiz"))
	assert.Equal(t, "unknown", normalizeHandlerName("  "))
	assert.Equal(t, "quiz_keyword", normalizeHandlerName("quiz keyword"))
}
