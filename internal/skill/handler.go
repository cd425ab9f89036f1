// Package skill handles one conversational turn: it routes the command
// through the dictation machine, the note store, the formatter and the mail
// transport, and words the answer from the response table.
package skill

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/lazypower/dettato/internal/dictation"
	"github.com/lazypower/dettato/internal/mailer"
	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/store"
	"github.com/lazypower/dettato/internal/transcript"
)

// Store is the slice of the database a turn needs.
type Store interface {
	dictation.NoteSaver
	RecentNotes(userID string, limit int) ([]store.Note, error)
	AllNotes(userID string) ([]store.Note, error)
	CleanupExpired(userID string) (int, error)
	InitSession(sessionID, userID string) (*store.Session, bool, error)
	IncrementTurnCount(sessionID string) error
	EndSession(sessionID string) error
}

// Options tune a Handler.
type Options struct {
	DatePattern string // strftime; transcript.DefaultDatePattern when empty
	RecentLimit int    // notes read back; store.DefaultRecentLimit when <= 0
	Logger      *slog.Logger
}

// Handler answers turns. It keeps no per-conversation state; everything
// conversational lives in the *dictation.Session passed to Handle.
type Handler struct {
	store   Store
	machine *dictation.Machine
	texts   *responses.Table
	mail    mailer.Sender
	opts    Options
	log     *slog.Logger
}

// New builds a Handler. mail may be nil when no transport is configured;
// send requests then answer NoTransportConfigured.
func New(st Store, texts *responses.Table, mail mailer.Sender, opts Options) *Handler {
	if opts.DatePattern == "" {
		opts.DatePattern = transcript.DefaultDatePattern
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = store.DefaultRecentLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   st,
		machine: dictation.New(st),
		texts:   texts,
		mail:    mail,
		opts:    opts,
		log:     logger,
	}
}

// Handle answers one turn, mutating sess in place.
func (h *Handler) Handle(ctx context.Context, turn Turn, sess *dictation.Session) Result {
	log := h.log.With("session_id", turn.SessionID, "user_id", turn.UserID)
	h.track(log, turn)

	switch cmd := turn.Command.(type) {
	case Launch:
		return h.ask(responses.Launch)

	case StartWriting:
		return h.ask(h.machine.StartWriting(sess))

	case CaptureFragment:
		class, err := h.machine.CaptureFragment(sess, turn.UserID, cmd.Text)
		if err != nil {
			return h.fail(log, "save note", err)
		}
		return h.ask(class)

	case Finish:
		class, err := h.machine.Finish(sess, turn.UserID)
		if err != nil {
			return h.fail(log, "save note", err)
		}
		return h.ask(class)

	case ReadNotes:
		if class, ok := h.machine.QueryGuard(sess); !ok {
			return h.ask(class)
		}
		return h.readNotes(log, turn.UserID)

	case SendEmail:
		if class, ok := h.machine.QueryGuard(sess); !ok {
			if class == responses.PendingNote {
				class = responses.PendingNoteSend
			}
			return h.ask(class)
		}
		return h.sendEmail(ctx, log, turn)

	case Close:
		return h.end(h.machine.Close(sess))

	case Help:
		return h.ask(responses.Help)

	case CancelOrStop:
		return h.end(responses.Goodbye)

	case SessionEnded:
		h.machine.Close(sess)
		if cmd.Reason != "" {
			log.Debug("session ended", "reason", cmd.Reason)
		}
		return h.end(responses.Closed)

	case Fallback:
		return h.ask(responses.NotUnderstood)

	default:
		log.Error("unrecognised command", "command", fmt.Sprintf("%T", turn.Command))
		return h.ask(responses.Error)
	}
}

// track records the conversation and runs retention cleanup the first time
// a session is seen. Failures are logged; they never fail the turn.
func (h *Handler) track(log *slog.Logger, turn Turn) {
	if turn.SessionID == "" {
		return
	}
	_, created, err := h.store.InitSession(turn.SessionID, turn.UserID)
	if err != nil {
		log.Warn("session tracking failed", "err", err)
		return
	}
	if created && turn.UserID != "" {
		if deleted, err := h.store.CleanupExpired(turn.UserID); err != nil {
			log.Warn("retention cleanup failed", "err", err)
		} else if deleted > 0 {
			log.Info("retention cleanup", "deleted", deleted)
		}
	}
	if err := h.store.IncrementTurnCount(turn.SessionID); err != nil {
		log.Warn("turn count failed", "err", err)
	}
	if _, ok := turn.Command.(SessionEnded); ok {
		if err := h.store.EndSession(turn.SessionID); err != nil {
			log.Warn("end session failed", "err", err)
		}
	}
}

func (h *Handler) readNotes(log *slog.Logger, userID string) Result {
	notes, err := h.store.RecentNotes(userID, h.opts.RecentLimit)
	if err != nil {
		return h.fail(log, "read notes", err)
	}
	if len(notes) == 0 {
		return h.ask(responses.NoNotes)
	}

	prefix := h.texts.Text(responses.ReadNotesPrefix)
	suffix := ". " + h.texts.Text(responses.MenuFull)
	budget := transcript.MaxSpeechChars - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(suffix)

	lines := transcript.Format(notes, h.opts.DatePattern, h.texts.Text(responses.NoteFormat))
	lines = transcript.Fit(lines, ". ", budget)
	return Result{
		Class:            responses.ReadNotes,
		Text:             prefix + transcript.Join(lines, ". ") + suffix,
		ExpectsMoreInput: true,
	}
}

func (h *Handler) sendEmail(ctx context.Context, log *slog.Logger, turn Turn) Result {
	if turn.Recipient == nil {
		return h.needPermission()
	}
	to, err := turn.Recipient.Address(ctx)
	if err != nil {
		log.Warn("email address lookup failed", "err", err)
		return h.needPermission()
	}
	if to == "" {
		return h.end(responses.EmailNotFound)
	}

	notes, err := h.store.AllNotes(turn.UserID)
	if err != nil {
		return h.fail(log, "all notes", err)
	}
	if len(notes) == 0 {
		return h.end(responses.NoNotesToSend)
	}

	if h.mail == nil {
		log.Error("smtp server configuration missing")
		return h.end(responses.NoTransportConfigured)
	}

	lines := transcript.Format(notes, h.opts.DatePattern, h.texts.Text(responses.EmailNoteFormat))
	msg := mailer.Message{
		To:      to,
		Subject: h.texts.Text(responses.EmailSubject),
		Body:    h.texts.Text(responses.EmailBodyPrefix) + transcript.Join(lines, "\n"),
	}
	if err := h.mail.Send(ctx, msg); err != nil {
		log.Error("email send failed", "err", err)
		return h.end(responses.EmailTransportError)
	}
	log.Info("email sent", "notes", len(notes))
	return h.ask(responses.EmailSent)
}

func (h *Handler) needPermission() Result {
	r := h.end(responses.PermissionNeeded)
	r.AskPermissions = []string{EmailPermission}
	return r
}

func (h *Handler) fail(log *slog.Logger, op string, err error) Result {
	log.Error(op+" failed", "err", err)
	return h.ask(responses.Error)
}

func (h *Handler) ask(c responses.Class) Result {
	return Result{Class: c, Text: h.texts.Text(c), ExpectsMoreInput: true}
}

func (h *Handler) end(c responses.Class) Result {
	return Result{Class: c, Text: h.texts.Text(c), ExpectsMoreInput: false}
}
