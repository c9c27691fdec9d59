package wallet

import (
	"time"

	"github.com/google/uuid"

	"demowallet/internal/cache"
	"demowallet/internal/log"
)

// Store keeps sessions in a size-bounded LRU with a sliding TTL. Evicted
// sessions have their in-flight insight cancelled.
type Store struct {
	sessions *cache.LRUCache[*Session]
	logger   *log.Logger
}

func NewStore(maxSessions int, ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	st := &Store{logger: logger.WithComponent(log.ComponentSession)}
	st.sessions = cache.NewLRUCache[*Session](maxSessions, ttl,
		cache.WithEvictCallback(func(id string, s *Session) {
			s.Close()
			st.logger.Debug("Session evicted", log.FieldSessionID, id)
		}),
	)
	return st
}

// Create registers a new unauthenticated session under a random ID.
func (st *Store) Create() *Session {
	s := NewSession(uuid.NewString())
	st.sessions.Set(s.ID, s)
	return s
}

// Get returns a live session and extends its lifetime.
func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return st.sessions.Get(id)
}

// Lookup returns the session for id, creating a new one when id is unknown
// or expired. created reports whether a new session was made.
func (st *Store) Lookup(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Create(), true
}

// Delete drops the session and cancels its insight request.
func (st *Store) Delete(id string) {
	st.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.sessions.Size()
}

// Cleaner exposes the underlying cache to a cache.Manager sweep.
func (st *Store) Cleaner() cache.Cleaner {
	return st.sessions
}
