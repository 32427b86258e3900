package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/leadquiz/app/notify"
	"github.com/m3rciful/leadquiz/core/telegram/state"
)

type fakeStore struct {
	mu       sync.Mutex
	leads    [][]string
	users    []int64
	names    []string
	failErr  error
	countErr error
}

func (s *fakeStore) Append(_ context.Context, userID int64, username string, answers []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}
	s.leads = append(s.leads, append([]string(nil), answers...))
	s.users = append(s.users, userID)
	s.names = append(s.names, username)
	return int64(len(s.leads)), nil
}

func (s *fakeStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.leads), nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (n *fakeNotifier) NotifyAll(_ context.Context, roster []int64, text string) []notify.Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, text)
	out := make([]notify.Delivery, len(roster))
	for i, id := range roster {
		out[i] = notify.Delivery{AdminID: id}
		if n.fail {
			out[i].Err = errors.New("forbidden")
		}
	}
	return out
}

type replies struct {
	texts []string
	err   error
}

func (r *replies) send(reply Reply) error {
	r.texts = append(r.texts, reply.Text)
	return r.err
}

func (r *replies) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

var ivan = []string{"Ivan", "IT", "Growth", "100k", "1 month", "yes, example.com", "@ivan"}

func newFlow(t *testing.T, store LeadStore, notifier Broadcaster, admins ...int64) (*Flow, *state.Store) {
	sessions := state.NewStore()
	f, err := New(Options{
		Questions: Questions,
		Sessions:  sessions,
		Store:     store,
		Notifier:  notifier,
		Admins:    admins,
	})
	require.NoError(t, err)
	return f, sessions
}

func answerAll(t *testing.T, f *Flow, r Respondent, answers []string, out *replies) {
	for _, a := range answers {
		_ = f.Submit(context.Background(), r, a, out.send)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Store: &fakeStore{}, Notifier: &fakeNotifier{}})
	assert.Error(t, err)
	_, err = New(Options{Questions: Questions})
	assert.Error(t, err)
}

func TestIvanScenario(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	f, sessions := newFlow(t, store, notifier, 100, 200)
	r := Respondent{UserID: 42, Username: "ivan_petrov"}
	ctx := context.Background()

	intro := f.Start(ctx, r.UserID)
	assert.Contains(t, intro.Text, Questions[0])

	out := &replies{}
	answerAll(t, f, r, ivan, out)

	_, active := sessions.Get(r.UserID)
	assert.False(t, active)

	require.Len(t, store.leads, 1)
	assert.Equal(t, ivan, store.leads[0])
	assert.Equal(t, int64(42), store.users[0])
	assert.Equal(t, "ivan_petrov", store.names[0])

	require.Len(t, out.texts, len(ivan))
	for i := 1; i < len(Questions); i++ {
		assert.Equal(t, Questions[i], out.texts[i-1])
	}
	summary := out.last()
	for i, q := range Questions {
		assert.Contains(t, summary, q+"\n   ↳ "+ivan[i])
	}

	require.Len(t, notifier.calls, 1)
	assert.Contains(t, notifier.calls[0], "`42`")
	assert.Contains(t, notifier.calls[0], `@ivan\_petrov`)
	assert.Contains(t, notifier.calls[0], "↳ Growth")
}

func TestCompletionAppendsExactlyOnceAndCountGrowsByOne(t *testing.T) {
	store := &fakeStore{}
	f, _ := newFlow(t, store, &fakeNotifier{}, 1)
	ctx := context.Background()

	for run := 0; run < 3; run++ {
		before, err := store.Count(ctx)
		require.NoError(t, err)

		answers := make([]string, len(Questions))
		for i := range answers {
			answers[i] = fmt.Sprintf("run%d-a%d", run, i)
		}
		f.Start(ctx, 7)
		answerAll(t, f, Respondent{UserID: 7}, answers, &replies{})

		after, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
		assert.Equal(t, answers, store.leads[len(store.leads)-1])
	}
}

func TestStartAlwaysResets(t *testing.T) {
	f, sessions := newFlow(t, &fakeStore{}, &fakeNotifier{})
	ctx := context.Background()

	f.Start(ctx, 1)
	sess, ok := sessions.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, sess.Stage)
	assert.Empty(t, sess.Answers)

	answerAll(t, f, Respondent{UserID: 1}, ivan[:3], &replies{})
	sess, _ = sessions.Get(1)
	assert.Equal(t, 3, sess.Stage)

	f.Start(ctx, 1)
	sess, ok = sessions.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, sess.Stage)
	assert.Empty(t, sess.Answers)

	f.Start(ctx, 1)
	sess, _ = sessions.Get(1)
	assert.Equal(t, 0, sess.Stage)
	assert.Empty(t, sess.Answers)
}

func TestCancel(t *testing.T) {
	f, sessions := newFlow(t, &fakeStore{}, &fakeNotifier{})
	ctx := context.Background()

	assert.Equal(t, NothingToCancelText, f.Cancel(ctx, 5).Text)
	assert.Zero(t, sessions.Len())

	for k := 0; k < len(Questions); k++ {
		f.Start(ctx, 5)
		answerAll(t, f, Respondent{UserID: 5}, ivan[:k], &replies{})
		require.True(t, f.InProgress(5), "stage %d", k)

		assert.Equal(t, CancelledText, f.Cancel(ctx, 5).Text)
		assert.False(t, f.InProgress(5))
	}
}

func TestSubmitAdvancesOneStageAtATime(t *testing.T) {
	f, sessions := newFlow(t, &fakeStore{}, &fakeNotifier{})
	f.Start(context.Background(), 9)

	for k := 0; k < len(Questions)-1; k++ {
		before, _ := sessions.Get(9)
		out := &replies{}
		require.NoError(t, f.Submit(context.Background(), Respondent{UserID: 9}, ivan[k], out.send))

		after, ok := sessions.Get(9)
		require.True(t, ok)
		assert.Equal(t, before.Stage+1, after.Stage)
		assert.Equal(t, append(before.Answers, ivan[k]), after.Answers)
		assert.Equal(t, Questions[k+1], out.last())
	}
}

func TestSubmitWhileIdle(t *testing.T) {
	f, sessions := newFlow(t, &fakeStore{}, &fakeNotifier{})
	out := &replies{}
	require.NoError(t, f.Submit(context.Background(), Respondent{UserID: 3}, "hello", out.send))
	assert.Equal(t, []string{FallbackText}, out.texts)
	assert.Zero(t, sessions.Len())
}

func TestSubmitAcceptsEmptyAnswers(t *testing.T) {
	store := &fakeStore{}
	f, _ := newFlow(t, store, &fakeNotifier{})
	f.Start(context.Background(), 4)

	blank := []string{"", " ", "\t", "", "", "", ""}
	answerAll(t, f, Respondent{UserID: 4}, blank, &replies{})
	require.Len(t, store.leads, 1)
	assert.Equal(t, blank, store.leads[0])
}

func TestCompletionIgnoresStoreAndNotifierFailures(t *testing.T) {
	cases := map[string]struct {
		store    *fakeStore
		notifier *fakeNotifier
	}{
		"healthy":        {&fakeStore{}, &fakeNotifier{}},
		"store fails":    {&fakeStore{failErr: errors.New("database is locked")}, &fakeNotifier{}},
		"notifier fails": {&fakeStore{}, &fakeNotifier{fail: true}},
		"both fail":      {&fakeStore{failErr: errors.New("disk full")}, &fakeNotifier{fail: true}},
	}

	var want string
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f, _ := newFlow(t, tc.store, tc.notifier, 1, 2)
			f.Start(context.Background(), 11)
			out := &replies{}
			answerAll(t, f, Respondent{UserID: 11}, ivan, out)

			assert.False(t, f.InProgress(11))
			assert.Len(t, tc.notifier.calls, 1, "notification must run even if the save failed")
			if want == "" {
				want = out.last()
			}
			assert.Equal(t, want, out.last())
		})
	}
}

func TestSendErrorDoesNotSkipPersistence(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	f, _ := newFlow(t, store, notifier, 1)
	f.Start(context.Background(), 8)

	sendErr := errors.New("telegram: bot was blocked by the user")
	out := &replies{err: sendErr}
	var last error
	for _, a := range ivan {
		last = f.Submit(context.Background(), Respondent{UserID: 8}, a, out.send)
	}
	assert.ErrorIs(t, last, sendErr)
	assert.Len(t, store.leads, 1)
	assert.Len(t, notifier.calls, 1)
}

func TestFanOutWithRealNotifier(t *testing.T) {
	var (
		mu  sync.Mutex
		got []int64
	)
	n := notify.New(func(_ context.Context, chatID int64, _ string) error {
		if chatID == 2 {
			return errors.New("chat not found")
		}
		mu.Lock()
		got = append(got, chatID)
		mu.Unlock()
		return nil
	})
	f, _ := newFlow(t, &fakeStore{}, n, 1, 2, 3)
	f.Start(context.Background(), 50)
	answerAll(t, f, Respondent{UserID: 50}, ivan, &replies{})

	assert.Equal(t, []int64{1, 3}, got)
}

func TestRestartDuringCompletionKeepsSnapshot(t *testing.T) {
	store := &fakeStore{}
	f, _ := newFlow(t, store, &fakeNotifier{})
	ctx := context.Background()
	f.Start(ctx, 77)
	answerAll(t, f, Respondent{UserID: 77}, ivan[:len(ivan)-1], &replies{})

	restart := func(Reply) error {
		f.Start(ctx, 77)
		return nil
	}
	require.NoError(t, f.Submit(ctx, Respondent{UserID: 77}, ivan[len(ivan)-1], restart))

	require.Len(t, store.leads, 1)
	assert.Equal(t, ivan, store.leads[0])
	assert.True(t, f.InProgress(77))
}

func TestConcurrentUsersDoNotInterfere(t *testing.T) {
	store := &fakeStore{}
	f, _ := newFlow(t, store, &fakeNotifier{})

	const users = 32
	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			f.Start(context.Background(), id)
			for _, a := range ivan {
				_ = f.Submit(context.Background(), Respondent{UserID: id}, a, func(Reply) error { return nil })
			}
		}(u)
	}
	wg.Wait()

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, users, n)
	for _, lead := range store.leads {
		assert.Equal(t, ivan, lead)
	}
}

func TestStats(t *testing.T) {
	store := &fakeStore{}
	f, _ := newFlow(t, store, &fakeNotifier{})
	ctx := context.Background()
	f.Start(ctx, 1)
	answerAll(t, f, Respondent{UserID: 1}, ivan, &replies{})
	f.Start(ctx, 2)

	leads, active, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, leads)
	assert.Equal(t, 1, active)

	store.countErr = errors.New("closed")
	_, _, err = f.Stats(ctx)
	assert.Error(t, err)
}

func TestStatsCachesLeadCount(t *testing.T) {
	store := &fakeStore{}
	f, err := New(Options{
		Questions: Questions,
		Store:     store,
		Notifier:  &fakeNotifier{},
		StatsTTL:  time.Minute,
	})
	require.NoError(t, err)
	ctx := context.Background()

	leads, _, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, leads)

	store.countErr = errors.New("closed")
	f.Start(ctx, 1)
	answerAll(t, f, Respondent{UserID: 1}, ivan, &replies{})

	leads, active, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, leads)
	assert.Equal(t, 0, active)
}

func TestLeadTextWithoutUsername(t *testing.T) {
	text := LeadText(Respondent{UserID: 1}, "s")
	assert.Contains(t, text, "Username: не указан")
}
