// Package dictation turns a sequence of spoken fragments into notes.
//
// A Session is the per-conversation context: which mode the user is in and
// the fragments dictated so far. It is never persisted by the store; the
// caller carries it between turns (see Attributes and FromAttributes) and
// drops it when the conversation ends.
package dictation

import "fmt"

// State is the dictation mode of a conversation.
type State string

const (
	Menu    State = "MENU"
	Writing State = "WRITING"
)

// Attribute keys used when a Session rides along in platform session
// attributes.
const (
	attrState  = "state"
	attrBuffer = "note_buffer"
)

// Session is the context of one conversation. The zero value is a fresh
// session in MENU with an empty buffer.
type Session struct {
	State  State
	Buffer []string
}

// NewSession returns a session in MENU with an empty buffer.
func NewSession() *Session {
	return &Session{State: Menu}
}

// Writing reports whether the session is dictating.
func (s *Session) Writing() bool {
	return s.State == Writing
}

// reset returns the session to MENU and drops the buffer.
func (s *Session) reset() {
	s.State = Menu
	s.Buffer = nil
}

// Attributes encodes the session for a platform session-attribute bag.
func (s *Session) Attributes() map[string]any {
	state := s.State
	if state == "" {
		state = Menu
	}
	buf := make([]string, len(s.Buffer))
	copy(buf, s.Buffer)
	return map[string]any{
		attrState:  string(state),
		attrBuffer: buf,
	}
}

// FromAttributes decodes a session from a platform session-attribute bag.
// A nil or empty bag yields a fresh session. Attributes decoded from JSON
// carry the buffer as []any; both that and []string are accepted.
func FromAttributes(attrs map[string]any) (*Session, error) {
	s := NewSession()
	if len(attrs) == 0 {
		return s, nil
	}

	if raw, ok := attrs[attrState]; ok && raw != nil {
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("session attribute %q: want string, got %T", attrState, raw)
		}
		switch State(str) {
		case Menu, Writing:
			s.State = State(str)
		default:
			return nil, fmt.Errorf("session attribute %q: unknown state %q", attrState, str)
		}
	}

	switch buf := attrs[attrBuffer].(type) {
	case nil:
	case []string:
		s.Buffer = append([]string(nil), buf...)
	case []any:
		for i, item := range buf {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("session attribute %q[%d]: want string, got %T", attrBuffer, i, item)
			}
			s.Buffer = append(s.Buffer, str)
		}
	default:
		return nil, fmt.Errorf("session attribute %q: want list, got %T", attrBuffer, buf)
	}

	// A buffer outside WRITING is meaningless.
	if s.State != Writing {
		s.Buffer = nil
	}
	return s, nil
}
