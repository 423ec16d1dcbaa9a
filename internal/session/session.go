// Package session tracks which uploaded dataset each client session is
// working with. Sessions are isolated from each other and expire after a
// period of inactivity.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is what the service remembers about one session
type State struct {
	ID         string
	DatasetKey string
	FileName   string
	Sheet      string
	Rows       int
	Columns    []string
	UploadedAt time.Time
	LastSeen   time.Time
}

// ExpireFunc is called for every session removed because it was idle
type ExpireFunc func(State)

// Store is an in-memory session registry
type Store struct {
	sessions map[string]*State
	mutex    sync.Mutex
	idleTTL  time.Duration
	onExpire ExpireFunc
	now      func() time.Time
	logger   *slog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store and starts its idle-session sweeper.
// onExpire may be nil.
func NewStore(idleTTL time.Duration, onExpire ExpireFunc, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		sessions: make(map[string]*State),
		idleTTL:  idleTTL,
		onExpire: onExpire,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "session_store")),
		stopChan: make(chan struct{}),
	}

	go s.sweep(sweepInterval(idleTTL))

	return s
}

// NewID returns a fresh session identifier
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id looks like an identifier issued by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Attach binds a dataset to the session, creating the session if needed.
// It returns the state that was replaced, if any.
func (s *Store) Attach(state State) (previous State, replaced bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	if old, ok := s.sessions[state.ID]; ok {
		previous, replaced = *old, true
	}
	if state.UploadedAt.IsZero() {
		state.UploadedAt = now
	}
	state.LastSeen = now
	s.sessions[state.ID] = &state

	return previous, replaced
}

// Get returns the session state and marks the session as active
func (s *Store) Get(id string) (State, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return State{}, false
	}
	st.LastSeen = s.now()
	return *st, true
}

// Delete forgets a session and returns its last state
func (s *Store) Delete(id string) (State, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return State{}, false
	}
	delete(s.sessions, id)
	return *st, true
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

// Stop halts the sweeper
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// expireIdle removes idle sessions. onExpire runs without the lock held.
func (s *Store) expireIdle() int {
	s.mutex.Lock()
	now := s.now()
	var expired []State
	for id, st := range s.sessions {
		if now.Sub(st.LastSeen) > s.idleTTL {
			expired = append(expired, *st)
			delete(s.sessions, id)
		}
	}
	s.mutex.Unlock()

	for _, st := range expired {
		s.logger.Debug("Session expired",
			slog.String("session_id", st.ID),
			slog.Duration("idle", now.Sub(st.LastSeen)))
		if s.onExpire != nil {
			s.onExpire(st)
		}
	}
	return len(expired)
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireIdle()
		case <-s.stopChan:
			return
		}
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Minute {
		return time.Minute
	}
	return interval
}
