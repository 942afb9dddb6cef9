// Package api wraps the remote contacts service: login plus CRUD on
// contacts. Every failure comes back as an *apperror.Error so callers can
// tell an expired session from a broken backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/apperror"
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/session"
)

// DefaultBaseURL is where the development backend listens
const DefaultBaseURL = "http://localhost:5000/api"

// maxErrorBody bounds how much of a failure body is read for its message
const maxErrorBody = 64 << 10

// LoginResult is the body of a successful login
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the contacts API
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	log     *zap.Logger
}

// New creates a client rooted at baseURL. A zero timeout means requests
// wait as long as their context allows.
func New(baseURL string, timeout time.Duration, store *session.Store, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: store,
		log:     log,
	}
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token and stores the session
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.send(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return LoginResult{}, apperror.NewNetwork(0, "Login failed.", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return LoginResult{}, apperror.NewAuth(resp.StatusCode, errorMessage(resp.Body, "Login failed."))
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LoginResult{}, apperror.NewNetwork(resp.StatusCode, "Login failed.", fmt.Errorf("decoding login response: %w", err))
	}
	if result.Token == "" {
		return LoginResult{}, apperror.NewAuth(resp.StatusCode, "Login failed.")
	}

	c.session.SetToken(result.Token, result.Username)
	c.log.Info("logged in", zap.String("username", c.session.Username()))
	return result, nil
}

// LoadContacts fetches every contact in server order
func (c *Client) LoadContacts(ctx context.Context) ([]contact.Contact, error) {
	var list []contact.Contact
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, "Failed to load contacts", &list); err != nil {
		return nil, err
	}
	return contact.NormalizeAll(list), nil
}

// SearchContacts fetches the contacts matching query
func (c *Client) SearchContacts(ctx context.Context, query string) ([]contact.Contact, error) {
	path := "/contacts/search?q=" + url.QueryEscape(query)

	var list []contact.Contact
	if err := c.do(ctx, http.MethodGet, path, nil, "Failed to search contacts", &list); err != nil {
		return nil, err
	}
	return contact.NormalizeAll(list), nil
}

// CreateContact creates a contact; the server assigns its id
func (c *Client) CreateContact(ctx context.Context, p contact.Payload) (contact.Contact, error) {
	var created contact.Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", p, "Failed to create contact", &created); err != nil {
		return contact.Contact{}, err
	}
	return contact.Normalize(created), nil
}

// UpdateContact replaces the contact with the given id
func (c *Client) UpdateContact(ctx context.Context, id string, p contact.Payload) (contact.Contact, error) {
	var updated contact.Contact
	if err := c.do(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), p, "Failed to update contact", &updated); err != nil {
		return contact.Contact{}, err
	}
	return contact.Normalize(updated), nil
}

// DeleteContact removes the contact with the given id
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, "Failed to delete contact", nil)
}

// Health checks that the backend is reachable
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil, false)
	if err != nil {
		return apperror.NewNetwork(0, "Health check failed", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return apperror.NewNetwork(resp.StatusCode, errorMessage(resp.Body, "Health check failed"), nil)
	}
	return nil
}

// do performs an authenticated call and decodes the response into out.
// A 401 clears the session before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, body any, failure string, out any) error {
	resp, err := c.send(ctx, method, path, body, true)
	if err != nil {
		return apperror.NewNetwork(0, failure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.session.Clear()
		c.log.Info("session rejected by server", zap.String("path", path))
		return apperror.NewAuth(resp.StatusCode, errorMessage(resp.Body, "Unauthorized"))
	case !isSuccess(resp.StatusCode):
		return apperror.NewNetwork(resp.StatusCode, errorMessage(resp.Body, failure), nil)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewNetwork(resp.StatusCode, failure, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	c.log.Debug("request", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errorMessage reads the {error} field of a failure body, falling back to
// fallback when the body is empty or not JSON
func errorMessage(r io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return fallback
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return fallback
	}
	return body.Error
}
