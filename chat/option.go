package chat

import (
	"log/slog"
)

// Option represents option
type Option func(c *Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogoutURL overrides the logout endpoint.
func WithLogoutURL(URL string) Option {
	return func(c *Client) {
		c.logoutURL = URL
	}
}

// WithThreadIDGenerator sets the generator used for new thread ids.
func WithThreadIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newThreadID = fn
		}
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
