// Package quiz drives the lead questionnaire: one linear dialog per user,
// followed by persistence of the lead and notification of administrators.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/m3rciful/leadquiz/app/notify"
	"github.com/m3rciful/leadquiz/core/logger"
	"github.com/m3rciful/leadquiz/core/telegram/state"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	defaultNotifyTimeout = 30 * time.Second

	leadCountKey = "leads"
)

// LeadStore persists completed questionnaires.
type LeadStore interface {
	Append(ctx context.Context, userID int64, username string, answers []string) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Broadcaster delivers text to every administrator in the roster.
type Broadcaster interface {
	NotifyAll(ctx context.Context, roster []int64, text string) []notify.Delivery
}

// Respondent identifies the user answering the quiz.
type Respondent struct {
	UserID   int64
	Username string
}

// Reply is a message for the respondent.
type Reply struct {
	Text string
}

// SendFunc delivers a reply to the respondent.
type SendFunc func(Reply) error

// Options configures a Flow.
type Options struct {
	Questions []string
	Sessions  *state.Store
	Store     LeadStore
	Notifier  Broadcaster
	Admins    []int64

	// StoreTimeout bounds a single lead save. Zero means 5s.
	StoreTimeout time.Duration
	// NotifyTimeout bounds the whole admin fan-out. Zero means 30s.
	NotifyTimeout time.Duration
	// StatsTTL caches the stored lead count between Stats calls. Zero
	// disables caching.
	StatsTTL time.Duration
}

// Flow is the quiz state machine. A user is either idle (no session) or
// awaiting the answer to question Stage.
type Flow struct {
	questions     []string
	sessions      *state.Store
	store         LeadStore
	notifier      Broadcaster
	admins        []int64
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	counts        *cache.Cache
}

// New validates opts and builds a Flow.
func New(opts Options) (*Flow, error) {
	if len(opts.Questions) == 0 {
		return nil, fmt.Errorf("quiz: no questions")
	}
	if opts.Store == nil || opts.Notifier == nil {
		return nil, fmt.Errorf("quiz: store and notifier are required")
	}
	if opts.Sessions == nil {
		opts.Sessions = state.NewStore()
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	var counts *cache.Cache
	if opts.StatsTTL > 0 {
		counts = cache.New(opts.StatsTTL, 2*opts.StatsTTL)
	}
	return &Flow{
		counts:        counts,
		questions:     append([]string(nil), opts.Questions...),
		sessions:      opts.Sessions,
		store:         opts.Store,
		notifier:      opts.Notifier,
		admins:        append([]int64(nil), opts.Admins...),
		storeTimeout:  opts.StoreTimeout,
		notifyTimeout: opts.NotifyTimeout,
	}, nil
}

// Questions returns the number of questions in the quiz.
func (f *Flow) Questions() int { return len(f.questions) }

// Start (re)starts the quiz for userID at the first question, discarding
// any progress.
func (f *Flow) Start(ctx context.Context, userID int64) Reply {
	restarted := false
	f.sessions.Update(userID, func(current *state.Session) *state.Session {
		restarted = current != nil
		return &state.Session{Answers: make([]string, 0, len(f.questions))}
	})
	logger.Info(ctx, "quiz", "quiz.start",
		slog.Int("stage", 0),
		slog.Bool("restarted", restarted),
	)
	return Reply{Text: IntroText(f.questions)}
}

// Cancel drops the user's quiz, if any.
func (f *Flow) Cancel(ctx context.Context, userID int64) Reply {
	if !f.sessions.Clear(userID) {
		logger.Debug(ctx, "quiz", "quiz.cancel", slog.String("status", "skip"))
		return Reply{Text: NothingToCancelText}
	}
	logger.Info(ctx, "quiz", "quiz.cancel")
	return Reply{Text: CancelledText}
}

// InProgress reports whether userID is in the middle of the quiz.
func (f *Flow) InProgress(userID int64) bool {
	return f.sessions.InProgress(userID)
}

// Submit records text as the answer to the current question. Before the last
// question it replies with the next prompt. On the last answer the user
// becomes idle, receives the summary, and only then is the lead saved and
// the administrators notified. Neither of those outcomes changes the reply.
// The error from send is returned after the lead has been handled.
func (f *Flow) Submit(ctx context.Context, r Respondent, text string, send SendFunc) error {
	var (
		idle      bool
		nextStage int
		completed []string
	)
	f.sessions.Update(r.UserID, func(current *state.Session) *state.Session {
		if current == nil || current.Stage < 0 || current.Stage >= len(f.questions) {
			idle = true
			return nil
		}
		current.Answers = append(current.Answers, text)
		if current.Stage == len(f.questions)-1 {
			completed = append([]string(nil), current.Answers...)
			return nil
		}
		current.Stage++
		nextStage = current.Stage
		return current
	})

	if idle {
		logger.Debug(ctx, "quiz", "quiz.answer", slog.String("status", "skip"))
		return send(Reply{Text: FallbackText})
	}
	if completed == nil {
		logger.Debug(ctx, "quiz", "quiz.answer", slog.Int("stage", nextStage))
		return send(Reply{Text: f.questions[nextStage]})
	}

	logger.Info(ctx, "quiz", "quiz.complete", slog.Int("answers", len(completed)))
	summary := Summary(f.questions, completed)
	sendErr := send(Reply{Text: ThankYouText(summary)})

	f.saveLead(ctx, r, completed)
	f.notifyAdmins(ctx, r, summary)
	return sendErr
}

func (f *Flow) saveLead(ctx context.Context, r Respondent, answers []string) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.storeTimeout)
	defer cancel()

	start := time.Now()
	id, err := f.store.Append(saveCtx, r.UserID, r.Username, answers)
	if err != nil {
		logger.Error(ctx, "quiz", "lead.save",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	if f.counts != nil {
		// A missing key just means the next Stats call reads the store.
		_, _ = f.counts.IncrementInt(leadCountKey, 1)
	}
	logger.Info(ctx, "quiz", "lead.save",
		slog.String("status", "ok"),
		slog.Int64("lead_id", id),
		slog.Duration("duration", time.Since(start)),
	)
}

func (f *Flow) notifyAdmins(ctx context.Context, r Respondent, summary string) {
	if len(f.admins) == 0 {
		logger.Warn(ctx, "quiz", "lead.notify", slog.String("status", "skip"), slog.String("reason", "no_admins"))
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.notifyTimeout)
	defer cancel()
	f.notifier.NotifyAll(notifyCtx, f.admins, LeadText(r, summary))
}

// Stats reports the number of stored leads and of quizzes in progress.
func (f *Flow) Stats(ctx context.Context) (leads, active int, err error) {
	if f.counts != nil {
		if v, ok := f.counts.Get(leadCountKey); ok {
			return v.(int), f.sessions.Len(), nil
		}
	}
	countCtx, cancel := context.WithTimeout(ctx, f.storeTimeout)
	defer cancel()
	leads, err = f.store.Count(countCtx)
	if err != nil {
		return 0, 0, fmt.Errorf("quiz: stats: %w", err)
	}
	if f.counts != nil {
		f.counts.SetDefault(leadCountKey, leads)
	}
	return leads, f.sessions.Len(), nil
}
