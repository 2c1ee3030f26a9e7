package transport

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(*RoundTripper)

// WithTransport sets the underlying transport (default http.DefaultTransport).
func WithTransport(transport http.RoundTripper) Option {
	return func(r *RoundTripper) {
		r.transport = transport
	}
}

// WithEndpoints overrides the authentication endpoint set.
func WithEndpoints(endpoints ...string) Option {
	return func(r *RoundTripper) {
		r.endpoints = endpoints
	}
}

// WithLogoutURL sets the best-effort session termination URL called when refresh fails.
func WithLogoutURL(URL string) Option {
	return func(r *RoundTripper) {
		r.logoutURL = URL
	}
}

// WithTimeout bounds every individual attempt (the original send and the replay separately).
func WithTimeout(timeout time.Duration) Option {
	return func(r *RoundTripper) {
		r.timeout = timeout
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *RoundTripper) {
		if logger != nil {
			r.logger = logger
		}
	}
}
