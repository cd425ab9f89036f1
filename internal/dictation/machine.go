package dictation

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/store"
)

// finishKeywords end a dictation when spoken as the whole utterance.
var finishKeywords = map[string]bool{
	"fine":      true,
	"finito":    true,
	"basta":     true,
	"ho finito": true,
}

// IsFinishKeyword reports whether text, trimmed and case-folded, is exactly
// one of the finish keywords. "fine" inside a longer sentence is not.
func IsFinishKeyword(text string) bool {
	return finishKeywords[cases.Fold().String(strings.TrimSpace(text))]
}

// NoteSaver persists a committed note.
type NoteSaver interface {
	SaveNote(userID, content string) (*store.Note, error)
}

// Machine drives a Session through MENU and WRITING. It holds no
// per-conversation state of its own and is safe to share.
type Machine struct {
	notes NoteSaver
}

// New returns a Machine that commits finished notes to notes.
func New(notes NoteSaver) *Machine {
	return &Machine{notes: notes}
}

// StartWriting enters WRITING with an empty buffer, from either state.
func (m *Machine) StartWriting(s *Session) responses.Class {
	s.State = Writing
	s.Buffer = []string{}
	return responses.StartWriting
}

// CaptureFragment handles one dictated utterance. A finish keyword commits
// like Finish; anything else, empty text included, is appended verbatim.
func (m *Machine) CaptureFragment(s *Session, userID, text string) (responses.Class, error) {
	if !s.Writing() {
		return responses.NotUnderstood, nil
	}
	if IsFinishKeyword(text) {
		return m.Finish(s, userID)
	}
	s.Buffer = append(s.Buffer, text)
	return responses.FragmentAcknowledged, nil
}

// Finish commits the buffer as one note, joined with single spaces. An
// empty join saves nothing. The session returns to MENU with an empty
// buffer whatever happens, including a failed save; the error is returned
// so the caller can apologise.
func (m *Machine) Finish(s *Session, userID string) (responses.Class, error) {
	if !s.Writing() {
		return responses.NotCurrentlyWriting, nil
	}
	full := strings.Join(s.Buffer, " ")
	s.reset()

	if full == "" {
		return responses.NothingSaid, nil
	}
	if _, err := m.notes.SaveNote(userID, full); err != nil {
		return responses.Error, err
	}
	return responses.NoteSaved, nil
}

// QueryGuard decides whether a read or send may run. While dictating it
// returns PendingNote if anything was captured (an empty fragment counts)
// and WritingInProgress otherwise, with proceed false.
func (m *Machine) QueryGuard(s *Session) (class responses.Class, proceed bool) {
	if !s.Writing() {
		return "", true
	}
	if len(s.Buffer) > 0 {
		return responses.PendingNote, false
	}
	return responses.WritingInProgress, false
}

// Close abandons any dictation in progress without saving.
func (m *Machine) Close(s *Session) responses.Class {
	if s.Writing() {
		s.reset()
	}
	return responses.Closed
}
