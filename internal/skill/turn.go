package skill

import (
	"context"

	"github.com/lazypower/dettato/internal/responses"
)

// EmailPermission is the consent scope needed to read the user's address.
const EmailPermission = "alexa::profile:email:read"

// AddressResolver looks up where to mail a user's notes. An error means the
// address could not be read (typically missing consent); an empty address
// with a nil error means the user has none on file.
type AddressResolver interface {
	Address(ctx context.Context) (string, error)
}

// Turn is one inbound request from the voice platform.
type Turn struct {
	SessionID string
	UserID    string
	Command   Command
	Recipient AddressResolver
}

// Result is what to say back.
type Result struct {
	Class            responses.Class
	Text             string
	ExpectsMoreInput bool
	AskPermissions   []string
}
