package wallet

import (
	"sync"

	"demowallet/internal/core"
)

// Session is the state of one renderer. All fields are guarded by mu; the
// Service is the only writer.
type Session struct {
	ID string

	mu            sync.Mutex
	authenticated bool
	screen        Screen
	account       *core.Account
	lastTx        *core.TransactionRecord
	message       string
	loginError    string
	insight       string
	insightTask   *InsightTask
}

// NewSession returns an unauthenticated session on the home screen.
func NewSession(id string) *Session {
	return &Session{ID: id, screen: HomeScreen{}}
}

// Close cancels any outstanding insight request.
func (s *Session) Close() {
	s.mu.Lock()
	s.dropInsightLocked()
	s.mu.Unlock()
}

// InsightInFlight reports whether an insight request is outstanding.
func (s *Session) InsightInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insightTask != nil
}

func (s *Session) reset() {
	s.dropInsightLocked()
	s.authenticated = false
	s.screen = HomeScreen{}
	s.account = nil
	s.lastTx = nil
	s.message = ""
	s.loginError = ""
	s.insight = ""
}

// clearAccountLocked drops everything tied to the active account but keeps
// authentication.
func (s *Session) clearAccountLocked() {
	s.dropInsightLocked()
	s.account = nil
	s.lastTx = nil
	s.message = ""
	s.insight = ""
}

// dropInsightLocked cancels the in-flight task; its result is discarded.
func (s *Session) dropInsightLocked() {
	if s.insightTask != nil {
		s.insightTask.Cancel()
		s.insightTask = nil
	}
}

func (s *Session) requireAccountLocked() error {
	if !s.authenticated {
		return ErrNotAuthenticated
	}
	if s.account == nil {
		return ErrNoActiveAccount
	}
	return nil
}
