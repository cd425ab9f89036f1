// Package alexa adapts the Alexa Skills Kit webhook format to skill turns:
// it decodes request envelopes, verifies they came from Alexa, resolves the
// user's profile email and encodes responses.
package alexa

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lazypower/dettato/internal/skill"
)

// Request types.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// Intent names.
const (
	IntentStartWriting = "StartWritingIntent"
	IntentCaptureNote  = "CaptureNoteIntent"
	IntentFinish       = "FinishIntent"
	IntentReadNotes    = "ReadNotesIntent"
	IntentSendEmail    = "SendEmailIntent"
	IntentClose        = "CloseIntent"
	IntentHelp         = "AMAZON.HelpIntent"
	IntentCancel       = "AMAZON.CancelIntent"
	IntentStop         = "AMAZON.StopIntent"
	IntentFallback     = "AMAZON.FallbackIntent"
)

// NoteSlot carries the dictated text of CaptureNoteIntent.
const NoteSlot = "note"

// RequestEnvelope is the body Alexa POSTs for every turn.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Context Context `json:"context"`
	Request Request `json:"request"`
}

// Session is the conversation the request belongs to.
type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	User        User           `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type User struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Context carries the device-side view, including the API endpoint and
// token used for profile lookups.
type Context struct {
	System System `json:"System"`
}

type System struct {
	Application    Application `json:"application"`
	User           User        `json:"user"`
	APIEndpoint    string      `json:"apiEndpoint"`
	APIAccessToken string      `json:"apiAccessToken"`
}

// Request is the turn itself. Only the fields this skill reads are decoded.
type Request struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
	Locale    string `json:"locale"`
	Intent    Intent `json:"intent"`
	Reason    string `json:"reason,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Decode parses a raw request body.
func Decode(body []byte) (*RequestEnvelope, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if env.Request.Type == "" {
		return nil, fmt.Errorf("decode request: missing request type")
	}
	return &env, nil
}

// Time parses the request timestamp.
func (r Request) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, r.Timestamp)
}

// ApplicationID prefers the session's application, falling back to the
// context for requests sent outside a session.
func (e *RequestEnvelope) ApplicationID() string {
	if id := e.Session.Application.ApplicationID; id != "" {
		return id
	}
	return e.Context.System.Application.ApplicationID
}

// UserID prefers the session's user, falling back to the context.
func (e *RequestEnvelope) UserID() string {
	if id := e.Session.User.UserID; id != "" {
		return id
	}
	return e.Context.System.User.UserID
}

// Command maps the request to a skill command. Unrecognised intents and
// request types return nil, which the handler answers with an apology.
func (e *RequestEnvelope) Command() skill.Command {
	switch e.Request.Type {
	case LaunchRequest:
		return skill.Launch{}
	case SessionEndedRequest:
		return skill.SessionEnded{Reason: e.Request.Reason}
	case IntentRequest:
	default:
		return nil
	}

	switch e.Request.Intent.Name {
	case IntentStartWriting:
		return skill.StartWriting{}
	case IntentCaptureNote:
		return skill.CaptureFragment{Text: e.Request.Intent.Slots[NoteSlot].Value}
	case IntentFinish:
		return skill.Finish{}
	case IntentReadNotes:
		return skill.ReadNotes{}
	case IntentSendEmail:
		return skill.SendEmail{}
	case IntentClose:
		return skill.Close{}
	case IntentHelp:
		return skill.Help{}
	case IntentCancel, IntentStop:
		return skill.CancelOrStop{}
	case IntentFallback:
		return skill.Fallback{}
	default:
		return nil
	}
}

// Turn builds the skill turn for this request. profile resolves the user's
// email with the request's API credentials; nil leaves the turn without a
// recipient.
func (e *RequestEnvelope) Turn(profile *ProfileClient) skill.Turn {
	t := skill.Turn{
		SessionID: e.Session.SessionID,
		UserID:    e.UserID(),
		Command:   e.Command(),
	}
	if profile != nil {
		t.Recipient = profile.For(e.Context.System.APIEndpoint, e.Context.System.APIAccessToken)
	}
	return t
}
