package bot

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State identifies where a conversation session is inside a guided flow.
// Idle means no flow is in progress; every completed or cancelled flow
// returns the session here.
type State int

const (
	StateIdle State = iota
	StateAwaitingPassword
	StateAddName
	StateAddDescription
	StateAddPrice
	StateAddPhoto
	StateEditName
	StateEditDescription
	StateEditPrice
	StateEditPhoto
	StateImportFile
)

// ProductDraft accumulates the fields of a guided product entry. It is
// committed as a single store write when the flow completes.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// Session is the per-conversation mutable flow state: the current state plus
// the partially entered data belonging to it.
type Session struct {
	State     State
	Draft     ProductDraft
	ProductID int64
}

// reset discards any in-progress flow and its partial data.
func (s *Session) reset() {
	*s = Session{}
}

// enter starts a new flow state, discarding whatever a previous incomplete
// flow left behind.
func (s *Session) enter(state State) {
	s.reset()
	s.State = state
}

// Sessions is a mutex-guarded map of conversation sessions keyed by chat id.
// Two simultaneous sessions never observe each other's in-progress entry.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Get returns the session for a chat, creating it on first use.
func (s *Sessions) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[chatID]
	if !ok {
		sess = &Session{}
		s.m[chatID] = sess
	}
	return sess
}
