package alexa

import (
	"github.com/lazypower/dettato/internal/dictation"
	"github.com/lazypower/dettato/internal/skill"
)

// ResponseEnvelope is the webhook reply.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          Response       `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Card is a companion-app card. Only the permissions consent card is used.
type Card struct {
	Type        string   `json:"type"`
	Permissions []string `json:"permissions,omitempty"`
}

const (
	speechPlainText = "PlainText"
	cardConsent     = "AskForPermissionsConsent"
	envelopeVersion = "1.0"
)

// NewResponse encodes a turn result. While the conversation continues the
// session attributes carry the dictation state to the next turn; the same
// text is used as the reprompt.
func NewResponse(res skill.Result, sess *dictation.Session) ResponseEnvelope {
	out := ResponseEnvelope{
		Version: envelopeVersion,
		Response: Response{
			ShouldEndSession: !res.ExpectsMoreInput,
		},
	}
	if res.Text != "" {
		out.Response.OutputSpeech = &OutputSpeech{Type: speechPlainText, Text: res.Text}
		if res.ExpectsMoreInput {
			out.Response.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: speechPlainText, Text: res.Text}}
		}
	}
	if len(res.AskPermissions) > 0 {
		out.Response.Card = &Card{Type: cardConsent, Permissions: res.AskPermissions}
	}
	if res.ExpectsMoreInput && sess != nil {
		out.SessionAttributes = sess.Attributes()
	}
	return out
}
