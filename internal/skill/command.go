package skill

// Command is what the user asked for on this turn. The set is closed: only
// the types in this file implement it, and Handle switches over all of them.
type Command interface {
	command()
}

type (
	// Launch opens the skill without a specific request.
	Launch struct{}
	// StartWriting begins a new dictation.
	StartWriting struct{}
	// CaptureFragment carries one dictated utterance, as recognized.
	CaptureFragment struct{ Text string }
	// Finish ends the dictation and saves it.
	Finish struct{}
	// ReadNotes reads back the most recent notes.
	ReadNotes struct{}
	// SendEmail mails every note to the user's profile address.
	SendEmail struct{}
	// Close leaves silently, discarding any unfinished dictation.
	Close struct{}
	// Help explains what can be said.
	Help struct{}
	// CancelOrStop says goodbye and ends the conversation.
	CancelOrStop struct{}
	// SessionEnded is the platform telling us the conversation is over.
	SessionEnded struct{ Reason string }
	// Fallback is an utterance the recognizer could not place.
	Fallback struct{}
)

func (Launch) command()          {}
func (StartWriting) command()    {}
func (CaptureFragment) command() {}
func (Finish) command()          {}
func (ReadNotes) command()       {}
func (SendEmail) command()       {}
func (Close) command()           {}
func (Help) command()            {}
func (CancelOrStop) command()    {}
func (SessionEnded) command()    {}
func (Fallback) command()        {}
