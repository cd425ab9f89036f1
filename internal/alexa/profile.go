package alexa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrPermissionDenied means the user has not granted email consent.
var ErrPermissionDenied = errors.New("alexa: profile permission denied")

const emailPath = "/v2/accounts/~current/settings/Profile.email"

// ProfileClient reads customer profile data through the Alexa API.
type ProfileClient struct {
	HTTP *http.Client
}

// NewProfileClient returns a client with the given request timeout.
func NewProfileClient(timeout time.Duration) *ProfileClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProfileClient{HTTP: &http.Client{Timeout: timeout}}
}

// Email fetches the user's email address. A user with no address on file
// yields "" and a nil error.
func (c *ProfileClient) Email(ctx context.Context, endpoint, token string) (string, error) {
	if endpoint == "" || token == "" {
		return "", ErrPermissionDenied
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(endpoint, "/")+emailPath, nil)
	if err != nil {
		return "", fmt.Errorf("profile email: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("profile email: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrPermissionDenied
	case http.StatusNoContent, http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("profile email: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("profile email: read body: %w", err)
	}
	// The API answers with a bare JSON string.
	var addr string
	if err := json.Unmarshal(body, &addr); err != nil {
		addr = string(body)
	}
	return strings.TrimSpace(addr), nil
}

// For binds the client to one request's credentials.
func (c *ProfileClient) For(endpoint, token string) *Recipient {
	return &Recipient{client: c, endpoint: endpoint, token: token}
}

// Recipient resolves one user's address. It satisfies skill.AddressResolver.
type Recipient struct {
	client   *ProfileClient
	endpoint string
	token    string
}

func (r *Recipient) Address(ctx context.Context) (string, error) {
	return r.client.Email(ctx, r.endpoint, r.token)
}
