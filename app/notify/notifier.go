// Package notify fans a lead summary out to the administrator roster.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/leadquiz/core/logger"
)

// ErrNoSender is reported for every recipient while no sender is bound.
var ErrNoSender = errors.New("notify: sender not configured")

// SendFunc delivers text to one chat.
type SendFunc func(ctx context.Context, chatID int64, text string) error

// Delivery is the outcome of one notification attempt.
type Delivery struct {
	AdminID int64
	Err     error
}

// Notifier delivers the same text to every administrator. Each attempt is
// independent: a failure for one recipient never prevents the others.
type Notifier struct {
	mu          sync.RWMutex
	send        SendFunc
	parallelism int
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithParallelism sends to up to n recipients at once. n <= 1 keeps
// delivery sequential in roster order.
func WithParallelism(n int) Option {
	return func(nt *Notifier) { nt.parallelism = n }
}

// New constructs a Notifier. send may be nil and bound later with SetSender.
func New(send SendFunc, opts ...Option) *Notifier {
	n := &Notifier{send: send}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetSender binds the delivery function once the transport is available.
func (n *Notifier) SetSender(send SendFunc) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *Notifier) sender() SendFunc {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.send
}

// NotifyAll makes one delivery attempt per administrator and returns the
// outcome for each, in roster order. Once ctx is done the remaining
// recipients are reported as failed without being contacted.
func (n *Notifier) NotifyAll(ctx context.Context, roster []int64, text string) []Delivery {
	results := make([]Delivery, len(roster))
	send := n.sender()

	deliver := func(i int) {
		id := roster[i]
		results[i] = Delivery{AdminID: id, Err: n.deliverOne(ctx, send, id, text)}
	}

	if n.parallelism > 1 && len(roster) > 1 {
		var g errgroup.Group
		g.SetLimit(n.parallelism)
		for i := range roster {
			i := i
			g.Go(func() error {
				deliver(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range roster {
			deliver(i)
		}
	}

	failed := 0
	for _, d := range results {
		if d.Err != nil {
			failed++
		}
	}
	logger.Info(ctx, "notify", "notify.summary",
		slog.Int("recipients", len(roster)),
		slog.Int("delivered", len(roster)-failed),
		slog.Int("failed", failed),
	)
	return results
}

func (n *Notifier) deliverOne(ctx context.Context, send SendFunc, adminID int64, text string) error {
	var err error
	switch {
	case ctx.Err() != nil:
		err = ctx.Err()
	case send == nil:
		err = ErrNoSender
	default:
		err = send(ctx, adminID, text)
	}
	if err != nil {
		logger.Warn(ctx, "notify", "notify.fail",
			slog.Int64("admin_id", adminID),
			slog.String("err", err.Error()),
		)
	}
	return err
}
