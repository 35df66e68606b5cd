// Package remote talks to the chantier REST backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
)

// DefaultServerURL is used until a server is configured.
const DefaultServerURL = "http://localhost:8080"

// ErrUnauthorized is returned when the server rejects the bearer token. The
// cached token is cleared before it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is lets callers test a 404 with errors.Is(err, store.ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case store.ErrNotFound:
		return e.Status == http.StatusNotFound
	case model.ErrInvalid:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// Session holds the server URL and the cached login
type Session struct {
	ServerURL string      `json:"server_url"`
	Token     string      `json:"token"`
	User      *model.User `json:"user,omitempty"`
}

// Client is the REST client
type Client struct {
	mu          sync.Mutex
	session     Session
	sessionPath string
	httpClient  *http.Client
}

// NewClient loads the session stored at sessionPath. An empty path keeps the
// session in memory only.
func NewClient(sessionPath string) (*Client, error) {
	c := &Client{
		sessionPath: sessionPath,
		session:     Session{ServerURL: DefaultServerURL},
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}

	if sessionPath == "" {
		return c, nil
	}
	data, err := os.ReadFile(sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, &c.session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", sessionPath, err)
	}
	if c.session.ServerURL == "" {
		c.session.ServerURL = DefaultServerURL
	}
	return c, nil
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) saveLocked() error {
	if c.sessionPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.sessionPath, data, 0600)
}

// Session returns a copy of the current session
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetServer sets the server URL
func (c *Client) SetServer(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.ServerURL = strings.TrimRight(url, "/")
	return c.saveLocked()
}

// SetToken stores a bearer token obtained elsewhere
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = token
	return c.saveLocked()
}

// IsLoggedIn returns true if a token is cached
func (c *Client) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token != ""
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates an account and keeps the returned session
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	return c.keep(res)
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) error {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return c.keep(res)
}

func (c *Client) keep(res authResponse) error {
	if res.Token == "" {
		return errors.New("server returned no token")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = res.Token
	user := res.User
	c.session.User = &user
	return c.saveLocked()
}

// Me returns the account behind the token
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

// Logout clears the session
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = ""
	c.session.User = nil
	return c.saveLocked()
}

// do sends body as JSON and decodes a 2xx answer into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	s := c.Session()
	req, err := http.NewRequestWithContext(ctx, method, s.ServerURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("API call",
		logger.F("method", method),
		logger.F("path", path),
		logger.F("status", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		if s.Token != "" {
			if err := c.Logout(); err != nil {
				logger.Warn("Failed to clear session", logger.F("error", err))
			}
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, readMessage(resp))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readMessage(resp)}
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readMessage extracts "message" (or "error") from a JSON error body.
func readMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
