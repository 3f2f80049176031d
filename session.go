package smpp

import "sync"

// SessionState is one of OPEN (TCP connected, not bound), BoundTRX (bind
// confirmed), or Closed (disconnected).
type SessionState int

const (
	Open SessionState = iota
	BoundTRX
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Open:
		return "OPEN"
	case BoundTRX:
		return "BOUND_TRX"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session tracks the ESME's connection/bind lifecycle and admits or rejects
// outgoing PDUs based on the current state.
type Session struct {
	mu    sync.RWMutex
	state SessionState
}

// NewSession starts in Closed; call Opened once the TCP connection succeeds.
func NewSession() *Session {
	return &Session{state: Closed}
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Opened transitions CLOSED -> OPEN on TCP connect.
func (s *Session) Opened() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Open
}

// Bound transitions OPEN -> BOUND_TRX on a successful bind_transceiver_resp.
func (s *Session) Bound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = BoundTRX
}

// Close transitions to CLOSED from any state (TCP disconnect, unbind
// completion).
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Closed
}

// Admit checks whether commandID may be emitted in the current state: only
// bind_* in OPEN, anything in BOUND_TRX, nothing in CLOSED.
func (s *Session) Admit(commandID CommandID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case Open:
		if commandID == BindTransceiver {
			return nil
		}
		return &IllegalSessionState{CommandID: commandID, State: s.state}
	case BoundTRX:
		return nil
	default: // Closed
		return &IllegalSessionState{CommandID: commandID, State: s.state}
	}
}
