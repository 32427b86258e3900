package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/leadquiz/core/logger"
)

var (
	// ErrAnswerCount is returned when a lead does not carry exactly the
	// expected number of answers.
	ErrAnswerCount = errors.New("leads: wrong number of answers")
	// ErrNotFound is returned by Get for an unknown id.
	ErrNotFound = errors.New("leads: not found")
)

const (
	insertLeadSQL = `INSERT INTO leads (user_id, username, answers, created_at) VALUES (?, ?, ?, ?) RETURNING id`
	countLeadsSQL = `SELECT COUNT(*) FROM leads`
	getLeadSQL    = `SELECT id, user_id, username, answers, created_at FROM leads WHERE id = ?`
)

// Store persists completed leads.
type Store struct {
	db          *sqlx.DB
	answerCount int
	now         func() time.Time
}

// NewStore returns a Store that accepts leads with exactly answerCount answers.
func NewStore(db *sqlx.DB, answerCount int) *Store {
	return &Store{db: db, answerCount: answerCount, now: time.Now}
}

// Append stores one lead and returns its id. The id is assigned by the
// database inside a transaction, so concurrent appends never collide.
func (s *Store) Append(ctx context.Context, userID int64, username string, answers []string) (int64, error) {
	if len(answers) != s.answerCount {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), s.answerCount)
	}

	start := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("leads: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	name := sql.NullString{String: strings.TrimSpace(username), Valid: strings.TrimSpace(username) != ""}
	createdAt := s.now().UTC().Format(time.RFC3339)

	var id int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(insertLeadSQL), userID, name, Answers(answers), createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("leads: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("leads: commit: %w", err)
	}

	logger.Debug(ctx, "leads", "lead.insert",
		slog.Int64("lead_id", id),
		slog.Duration("duration", time.Since(start)),
	)
	return id, nil
}

// Count returns the number of stored leads.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, countLeadsSQL); err != nil {
		return 0, fmt.Errorf("leads: count: %w", err)
	}
	return n, nil
}

// Get loads one lead by id.
func (s *Store) Get(ctx context.Context, id int64) (*Lead, error) {
	var l Lead
	err := s.db.GetContext(ctx, &l, s.db.Rebind(getLeadSQL), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leads: get %d: %w", id, err)
	}
	return &l, nil
}
