// Package client is a typed client for the user management API. It keeps the
// refresh token in a cookie jar and renews the access token shortly before it
// expires.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

const (
	defaultRefreshMargin = time.Minute
	refreshCookieName    = "refreshToken"
)

// APIError is a non 2xx response.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Session is the signed-in account.
type Session struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"isVerified"`
	JWTToken   string    `json:"jwtToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced
// when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRefreshMargin sets how long before expiry the access token is renewed.
func WithRefreshMargin(d time.Duration) Option {
	return func(c *Client) { c.refreshMargin = d }
}

// WithRefreshHook is called after every background refresh.
func WithRefreshHook(fn func(*Session, error)) Option {
	return func(c *Client) { c.onRefresh = fn }
}

type Client struct {
	httpClient    *http.Client
	baseURL       string
	refreshMargin time.Duration
	onRefresh     func(*Session, error)

	mu      sync.Mutex
	session *Session
	timer   *time.Timer
	closed  bool
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:    &http.Client{Timeout: 20 * time.Second},
		baseURL:       strings.TrimRight(baseURL, "/"),
		refreshMargin: defaultRefreshMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// Session returns a copy of the current session, nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.JWTToken
}

func (c *Client) request(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Login authenticates and starts the background refresh.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.request(ctx, http.MethodPost, "/accounts/authenticate", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	c.setSession(&s)
	return c.Session(), nil
}

// Refresh rotates the refresh token held in the cookie jar.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.request(ctx, http.MethodPost, "/accounts/refresh-token", nil, &s); err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			c.clearSession()
		}
		return nil, err
	}
	c.setSession(&s)
	return c.Session(), nil
}

// Logout revokes the refresh token and forgets the session. The local session
// is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.request(ctx, http.MethodPost, "/accounts/revoke-token", nil, nil)
	c.clearSession()
	return err
}

// RefreshCookie returns the refresh token currently held in the cookie jar.
func (c *Client) RefreshCookie() string {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == refreshCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetRefreshCookie restores a refresh token saved by an earlier process.
func (c *Client) SetRefreshCookie(token string) error {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return err
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{Name: refreshCookieName, Value: token, Path: "/"}})
	return nil
}

// Close stops the background refresh.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.closed || s.ExpiresAt.IsZero() {
		return
	}

	delay := time.Until(s.ExpiresAt) - c.refreshMargin
	if delay < 0 {
		delay = 0
	}
	c.timer = time.AfterFunc(delay, c.backgroundRefresh)
}

func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) backgroundRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := c.Refresh(ctx)
	if err != nil {
		applog.Warning("refresh access token: %v", err)
	}
	if c.onRefresh != nil {
		c.onRefresh(s, err)
	}
}
