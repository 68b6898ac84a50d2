// Package directory is the HTTP client for the user directory service. The
// auth service uses it to resolve credentials; it is the only caller of the
// internal by-email lookup.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leadflow/leadflow/pkg/auth"
)

// ErrUserNotFound is returned when the directory has no user for the email.
var ErrUserNotFound = errors.New("user not found")

// Client looks up users in the directory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a directory client for the given base URL. Lookups run on
// the caller's context with no additional timeout; the auth service holds the
// login request open until the directory answers.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// GetByEmail fetches the user record, including the password hash, for the
// given email. Returns ErrUserNotFound on a 404.
func (c *Client) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	lookupURL := c.baseURL + "/users/by-email/" + url.PathEscape(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("directory lookup: unexpected status %d", resp.StatusCode)
	}

	var user auth.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	return &user, nil
}
