package dictation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/store"
)

type savedNote struct {
	userID  string
	content string
}

type fakeSaver struct {
	saved []savedNote
	err   error
}

func (f *fakeSaver) SaveNote(userID, content string) (*store.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, savedNote{userID, content})
	return &store.Note{UserID: userID, Content: content}, nil
}

func newMachine() (*Machine, *fakeSaver) {
	saver := &fakeSaver{}
	return New(saver), saver
}

func TestDictateAndFinishKeyword(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()

	assert.Equal(t, responses.StartWriting, m.StartWriting(s))

	for _, frag := range []string{"comprare il latte", "e il pane"} {
		class, err := m.CaptureFragment(s, "user-1", frag)
		require.NoError(t, err)
		assert.Equal(t, responses.FragmentAcknowledged, class)
	}

	class, err := m.CaptureFragment(s, "user-1", "fine")
	require.NoError(t, err)
	assert.Equal(t, responses.NoteSaved, class)

	require.Len(t, saver.saved, 1)
	assert.Equal(t, savedNote{"user-1", "comprare il latte e il pane"}, saver.saved[0])
	assert.Equal(t, Menu, s.State)
	assert.Empty(t, s.Buffer)
}

func TestFinishJoinsInOrder(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)

	frags := []string{"uno", "due", "tre", "quattro", "cinque"}
	for _, f := range frags {
		_, err := m.CaptureFragment(s, "user-1", f)
		require.NoError(t, err)
	}

	class, err := m.Finish(s, "user-1")
	require.NoError(t, err)
	assert.Equal(t, responses.NoteSaved, class)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "uno due tre quattro cinque", saver.saved[0].content)
}

func TestFragmentKeepsOriginalText(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)

	_, _ = m.CaptureFragment(s, "user-1", "  Chiamare MARIO ")
	_, _ = m.Finish(s, "user-1")

	require.Len(t, saver.saved, 1)
	assert.Equal(t, "  Chiamare MARIO ", saver.saved[0].content)
}

func TestFinishWithEmptyBuffer(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)

	class, err := m.Finish(s, "user-1")
	require.NoError(t, err)
	assert.Equal(t, responses.NothingSaid, class)
	assert.Empty(t, saver.saved)
	assert.Equal(t, Menu, s.State)

	m.StartWriting(s)
	class, err = m.CaptureFragment(s, "user-1", "basta")
	require.NoError(t, err)
	assert.Equal(t, responses.NothingSaid, class)
	assert.Empty(t, saver.saved)
}

func TestFinishWithOnlyEmptyFragments(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)

	_, _ = m.CaptureFragment(s, "user-1", "")
	assert.Equal(t, []string{""}, s.Buffer)

	class, err := m.Finish(s, "user-1")
	require.NoError(t, err)
	assert.Equal(t, responses.NothingSaid, class)
	assert.Empty(t, saver.saved)
}

func TestFinishKeywordNormalization(t *testing.T) {
	terminating := []string{"fine", "FINE", "fine ", " Finito", "BASTA", "Ho Finito", "\tho finito\n"}
	for _, text := range terminating {
		assert.True(t, IsFinishKeyword(text), "%q should terminate", text)
	}

	continuing := []string{"va bene, fine per oggi", "fine.", "finire", "ho", "", "basta così"}
	for _, text := range continuing {
		assert.False(t, IsFinishKeyword(text), "%q should not terminate", text)
	}
}

func TestKeywordInsideSentenceDoesNotTerminate(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)

	class, err := m.CaptureFragment(s, "user-1", "va bene, fine per oggi")
	require.NoError(t, err)
	assert.Equal(t, responses.FragmentAcknowledged, class)
	assert.Equal(t, Writing, s.State)
	assert.Empty(t, saver.saved)
}

func TestCaptureOutsideWriting(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()

	class, err := m.CaptureFragment(s, "user-1", "fine")
	require.NoError(t, err)
	assert.Equal(t, responses.NotUnderstood, class)
	assert.Equal(t, Menu, s.State)
	assert.Empty(t, s.Buffer)
	assert.Empty(t, saver.saved)
}

func TestFinishOutsideWriting(t *testing.T) {
	m, _ := newMachine()
	s := NewSession()

	class, err := m.Finish(s, "user-1")
	require.NoError(t, err)
	assert.Equal(t, responses.NotCurrentlyWriting, class)
	assert.Equal(t, Menu, s.State)
}

func TestStartWritingResetsBuffer(t *testing.T) {
	m, _ := newMachine()
	s := NewSession()
	m.StartWriting(s)
	_, _ = m.CaptureFragment(s, "user-1", "dimenticato")

	m.StartWriting(s)
	assert.Equal(t, Writing, s.State)
	assert.Empty(t, s.Buffer)
}

func TestQueryGuard(t *testing.T) {
	m, _ := newMachine()
	s := NewSession()

	_, proceed := m.QueryGuard(s)
	assert.True(t, proceed)

	m.StartWriting(s)
	class, proceed := m.QueryGuard(s)
	assert.False(t, proceed)
	assert.Equal(t, responses.WritingInProgress, class)

	_, _ = m.CaptureFragment(s, "user-1", "qualcosa")
	class, proceed = m.QueryGuard(s)
	assert.False(t, proceed)
	assert.Equal(t, responses.PendingNote, class)
}

func TestQueryGuardCountsEmptyFragment(t *testing.T) {
	m, _ := newMachine()
	s := NewSession()
	m.StartWriting(s)
	_, _ = m.CaptureFragment(s, "user-1", "")

	class, proceed := m.QueryGuard(s)
	assert.False(t, proceed)
	assert.Equal(t, responses.PendingNote, class)
}

func TestCloseDiscardsBuffer(t *testing.T) {
	m, saver := newMachine()
	s := NewSession()
	m.StartWriting(s)
	_, _ = m.CaptureFragment(s, "user-1", "appunto parziale")

	m.Close(s)
	assert.Equal(t, Menu, s.State)
	assert.Empty(t, s.Buffer)
	assert.Empty(t, saver.saved)

	// Closing in MENU is a no-op.
	m.Close(s)
	assert.Equal(t, Menu, s.State)
}

func TestFinishResetsEvenWhenSaveFails(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk gone")}
	m := New(saver)
	s := NewSession()
	m.StartWriting(s)
	_, _ = m.CaptureFragment(s, "user-1", "testo")

	class, err := m.Finish(s, "user-1")
	require.Error(t, err)
	assert.Equal(t, responses.Error, class)
	assert.Equal(t, Menu, s.State)
	assert.Empty(t, s.Buffer)
}

func TestMachineWithRealStore(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := New(db)
	s := NewSession()
	m.StartWriting(s)
	_, _ = m.CaptureFragment(s, "user-1", "comprare il latte")
	_, _ = m.CaptureFragment(s, "user-1", "e il pane")
	_, err = m.CaptureFragment(s, "user-1", "Fine")
	require.NoError(t, err)

	notes, err := db.AllNotes("user-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "comprare il latte e il pane", notes[0].Content)
}
