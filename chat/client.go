package chat

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/store"
	"github.com/viant/simon/auth/transport"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the local development API root.
const DefaultBaseURL = "http://localhost:8000/api/"

const (
	askPath     = "chat/ask/"
	historyPath = "chat/history/"
	threadsPath = "chat/threads/"
)

// Client is the Simon API client. All calls go through the authenticated transport.
type Client struct {
	transport   *transport.RoundTripper
	baseURL     string
	logoutURL   string
	newThreadID func() string
	logger      *slog.Logger
}

// New creates a client over rt.
func New(rt *transport.RoundTripper, options ...Option) *Client {
	ret := &Client{
		transport:   rt,
		baseURL:     DefaultBaseURL,
		newThreadID: uuid.NewString,
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Transport returns the authenticated transport.
func (c *Client) Transport() *transport.RoundTripper {
	return c.transport
}

// HTTPClient returns a standard client whose requests carry the credential.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c.transport}
}

func (c *Client) store() store.Store {
	return c.transport.Store()
}

// Login exchanges credentials for an access credential and stores it; the
// refresh cookie is kept by the transport cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	result, err := send[Credentials, accessResult](ctx, c, http.MethodPost, auth.TokenPath, &Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if result.Access == "" {
		return fmt.Errorf("login failed: %w", auth.ErrMissingAccess)
	}
	if err = c.store().AddToken(store.NewToken(result.Access)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	c.logger.Info("logged in", "email", email)
	return nil
}

// Me returns the current user profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	return send[any, User](ctx, c, http.MethodGet, auth.MePath, nil)
}

// Authenticated probes the session; any failure counts as unauthenticated.
func (c *Client) Authenticated(ctx context.Context) bool {
	if _, err := c.Me(ctx); err != nil {
		c.logger.Debug("session probe failed", "error", err)
		return false
	}
	return true
}

// Logout revokes the session on the server when possible and always clears the local credential.
func (c *Client) Logout(ctx context.Context) error {
	URL := c.logoutURL
	if URL == "" {
		var err error
		if URL, err = auth.URL(c.baseURL, auth.LogoutPath); err != nil {
			return err
		}
	}
	if _, err := c.transport.Send(ctx, transport.NewRequest(http.MethodPost, URL, nil)); err != nil {
		c.logger.Debug("server logout failed", "error", err)
	}
	return c.store().ClearToken()
}

// Ask sends message to threadID, starting a new thread when threadID is empty.
func (c *Client) Ask(ctx context.Context, threadID, message string) (*Answer, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("message was empty")
	}
	if threadID == "" {
		threadID = c.newThreadID()
	}
	result, err := send[askParams, askResult](ctx, c, http.MethodPost, askPath, &askParams{Message: message, ThreadID: threadID})
	if err != nil {
		return nil, err
	}
	return &Answer{ThreadID: threadID, Response: result.Response}, nil
}

// History returns the messages of threadID in order.
func (c *Client) History(ctx context.Context, threadID string) ([]*Message, error) {
	if threadID == "" {
		return nil, errors.New("thread id was empty")
	}
	result, err := send[any, historyResult](ctx, c, http.MethodGet, historyPath+url.PathEscape(threadID)+"/", nil)
	if err != nil {
		return nil, err
	}
	return result.History, nil
}

// Threads lists the user's threads, newest first.
func (c *Client) Threads(ctx context.Context) ([]*Thread, error) {
	result, err := send[any, []*Thread](ctx, c, http.MethodGet, threadsPath, nil)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

func send[P any, R any](ctx context.Context, c *Client, method, path string, params *P) (*R, error) {
	URL, err := auth.URL(c.baseURL, path)
	if err != nil {
		return nil, err
	}
	var payload interface{}
	if params != nil {
		payload = params
	}
	request, err := transport.NewJSONRequest(method, URL, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v request: %w", path, err)
	}
	response, err := c.transport.Send(ctx, request)
	if err != nil {
		return nil, err
	}
	var result R
	if err = response.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode %v response: %w", path, err)
	}
	return &result, nil
}
