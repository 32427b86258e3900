package leads

import (
	"database/sql"
	"time"
)

// Lead is a completed questionnaire plus who filled it in.
type Lead struct {
	ID       int64          `db:"id"`
	UserID   int64          `db:"user_id"`
	Username sql.NullString `db:"username"`
	Answers  Answers        `db:"answers"`
	// CreatedAt is RFC 3339 UTC text so both drivers store it the same way.
	CreatedAt string `db:"created_at"`
}

// CreatedTime parses CreatedAt.
func (l Lead) CreatedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, l.CreatedAt)
}
