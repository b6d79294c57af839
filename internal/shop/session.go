package shop

import "sync"

// State is the conversation position for one chat.
type State int

const (
	StateMenu State = iota
	StateProductDetail
	StateCartView
	StateAwaitingEmail
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateProductDetail:
		return "product_detail"
	case StateCartView:
		return "cart_view"
	case StateAwaitingEmail:
		return "awaiting_email"
	}
	return "unknown"
}

// CartLine is the read-only projection of one remote cart line, kept only to
// label and address the remove buttons. It is replaced wholesale on every
// cart render, never merged.
type CartLine struct {
	Name   string
	ItemID string
}

// Session is the per-chat ephemeral conversation state. Losing it (process
// restart) loses at most the in-flight product selection; the remote cart is
// the source of truth for everything committed.
type Session struct {
	State             State
	SelectedProductID string
	CartLines         []CartLine
}

// Sessions holds one Session per chat. Within a chat, turns arrive strictly
// in order, so only the map itself needs guarding, not the sessions.
type Sessions struct {
	mu     sync.Mutex
	byChat map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byChat: make(map[int64]*Session)}
}

// Get returns the chat's session, creating it in Menu on first contact.
func (s *Sessions) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byChat[chatID]
	if !ok {
		sess = &Session{State: StateMenu}
		s.byChat[chatID] = sess
	}
	return sess
}

// Reset drops the chat's session; the next turn starts over in Menu.
func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byChat, chatID)
}
