package state

import "sync"

const shardCount = 64

// Session is the progress of one user through a linear dialog.
// While a session exists len(Answers) == Stage.
type Session struct {
	Stage   int
	Answers []string
}

// Clone returns a deep copy safe to use outside the store lock.
func (s Session) Clone() Session {
	return Session{Stage: s.Stage, Answers: append([]string(nil), s.Answers...)}
}

type shard struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// Store is an in-memory session registry keyed by Telegram user id.
// Sessions do not survive a restart.
type Store struct {
	shards [shardCount]shard
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].sessions = make(map[int64]*Session)
	}
	return s
}

func (s *Store) shardFor(userID int64) *shard {
	idx := uint64(userID) % shardCount
	return &s.shards[idx]
}

// Update runs fn with exclusive access to the user's session. current is nil
// when the user is idle. The returned session replaces the stored one; nil
// removes it. fn must not block: it runs under the shard lock.
func (s *Store) Update(userID int64, fn func(current *Session) *Session) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	next := fn(sh.sessions[userID])
	if next == nil {
		delete(sh.sessions, userID)
		return
	}
	sh.sessions[userID] = next
}

// Get returns a copy of the user's session and whether one exists.
func (s *Store) Get(userID int64) (Session, bool) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sess, ok := sh.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return sess.Clone(), true
}

// InProgress reports whether the user currently has an active session.
func (s *Store) InProgress(userID int64) bool {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.sessions[userID]
	return ok
}

// Clear removes the user's session, reporting whether one existed.
func (s *Store) Clear(userID int64) bool {
	var existed bool
	s.Update(userID, func(current *Session) *Session {
		existed = current != nil
		return nil
	})
	return existed
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}
