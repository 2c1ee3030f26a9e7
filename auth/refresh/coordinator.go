package refresh

import (
	"context"
	"errors"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/store"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds a single refresh exchange.
const DefaultTimeout = 30 * time.Second

const flightKey = "refresh"

// Coordinator runs at most one refresh exchange at a time.
type Coordinator struct {
	exchanger Exchanger
	store     store.Store
	timeout   time.Duration
	logger    *slog.Logger
	group     singleflight.Group
	exchanges atomic.Int64
}

// Option customises Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds each exchange; 0 disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = timeout
	}
}

// WithLogger sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a coordinator committing refreshed credentials to aStore.
func New(exchanger Exchanger, aStore store.Store, options ...Option) *Coordinator {
	ret := &Coordinator{
		exchanger: exchanger,
		store:     aStore,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Refresh joins the in-flight exchange or starts one. The exchange is detached
// from ctx cancellation: if ctx ends first, the caller gets ctx.Err() while
// the exchange keeps going for everyone else.
func (c *Coordinator) Refresh(ctx context.Context) (*oauth2.Token, error) {
	flight := c.group.DoChan(flightKey, func() (interface{}, error) {
		return c.exchange(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*oauth2.Token), nil
	}
}

// Exchanges returns the number of exchanges performed so far.
func (c *Coordinator) Exchanges() int64 {
	return c.exchanges.Load()
}

func (c *Coordinator) exchange(ctx context.Context) (*oauth2.Token, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	c.exchanges.Add(1)
	started := time.Now()
	c.logger.Debug("refreshing credential")
	access, err := c.exchanger.Exchange(ctx)
	if err != nil {
		c.logger.Warn("credential refresh failed", "error", err, "elapsed", time.Since(started))
		var refreshErr *auth.RefreshError
		if !errors.As(err, &refreshErr) {
			err = &auth.RefreshError{Err: err}
		}
		return nil, err
	}
	token := store.NewToken(access)
	// commit before the flight settles so every waiter observes the new credential;
	// the server already rotated the session, so a failed commit is not a rejection
	if err = c.store.AddToken(token); err != nil {
		c.logger.Warn("failed to store refreshed credential", "error", err, "elapsed", time.Since(started))
		return token, nil
	}
	c.logger.Info("credential refreshed", "elapsed", time.Since(started))
	return token, nil
}
