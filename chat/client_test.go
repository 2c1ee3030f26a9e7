package chat

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/mock"
	"github.com/viant/simon/auth/refresh"
	"github.com/viant/simon/auth/store"
	"github.com/viant/simon/auth/transport"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"testing"
)

func newTestClient(t *testing.T, server *mock.HTTPTestServer, options ...Option) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base := transport.WrapWithCookieJar(http.DefaultTransport, jar)
	aStore := store.NewMemoryStore()
	refreshURL, err := auth.URL(server.URL, auth.RefreshPath)
	require.NoError(t, err)
	logoutURL, err := auth.URL(server.URL, auth.LogoutPath)
	require.NoError(t, err)
	rt := transport.New(aStore, refresh.New(refresh.NewHTTPExchanger(refreshURL, base), aStore),
		transport.WithTransport(base), transport.WithLogoutURL(logoutURL))
	return New(rt, append([]Option{WithBaseURL(server.URL)}, options...)...)
}

func TestClient_Session(t *testing.T) {
	server, err := mock.NewHTTPTestServer()
	require.NoError(t, err)
	defer server.Close()
	client := newTestClient(t, server)
	ctx := context.Background()

	assert.False(t, client.Authenticated(ctx))
	refreshes, logouts := server.Refreshes(), server.Logouts()
	assert.Equal(t, 1, refreshes, "anonymous probe attempts one refresh")

	err = client.Login(ctx, mock.DefaultEmail, "wrong")
	var httpErr *auth.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, refreshes, server.Refreshes(), "failed login never triggers refresh")

	require.NoError(t, client.Login(ctx, mock.DefaultEmail, mock.DefaultPassword))
	assert.True(t, client.Authenticated(ctx))
	user, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultEmail, user.Email)
	assert.Equal(t, "simon", user.Username)

	server.Expire()
	user, err = client.Me(ctx)
	require.NoError(t, err, "expired access is refreshed transparently")
	assert.Equal(t, mock.DefaultEmail, user.Email)
	assert.Equal(t, refreshes+1, server.Refreshes())

	require.NoError(t, client.Logout(ctx))
	_, ok := client.Transport().Store().LookupToken()
	assert.False(t, ok)
	assert.Equal(t, logouts+1, server.Logouts())

	_, err = client.Me(ctx)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated, "refresh cookie revoked by logout")
}

func TestClient_Chat(t *testing.T) {
	server, err := mock.NewHTTPTestServer()
	require.NoError(t, err)
	defer server.Close()
	client := newTestClient(t, server, WithThreadIDGenerator(func() string { return "thread-1" }))
	ctx := context.Background()
	require.NoError(t, client.Login(ctx, mock.DefaultEmail, mock.DefaultPassword))

	answer, err := client.Ask(ctx, "", "Hello there")
	require.NoError(t, err)
	assert.Equal(t, "thread-1", answer.ThreadID)
	assert.Equal(t, mock.Reply("Hello there"), answer.Response)

	server.Expire()
	answer, err = client.Ask(ctx, "thread-1", "Again")
	require.NoError(t, err)
	assert.Equal(t, mock.Reply("Again"), answer.Response)

	history, err := client.History(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, []*Message{
		{Sender: "user", Text: "Hello there"},
		{Sender: "ai", Text: mock.Reply("Hello there")},
		{Sender: "user", Text: "Again"},
		{Sender: "ai", Text: mock.Reply("Again")},
	}, history, "replayed ask is not duplicated")

	threads, err := client.Threads(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*Thread{{ID: "thread-1", Title: "Hello there"}}, threads)

	history, err = client.History(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = client.Ask(ctx, "thread-1", "  ")
	assert.Error(t, err)
	_, err = client.History(ctx, "")
	assert.Error(t, err)
}

func TestClient_ConcurrentExpiry(t *testing.T) {
	server, err := mock.NewHTTPTestServer()
	require.NoError(t, err)
	defer server.Close()
	client := newTestClient(t, server)
	ctx := context.Background()
	require.NoError(t, client.Login(ctx, mock.DefaultEmail, mock.DefaultPassword))
	server.Expire()

	var wg sync.WaitGroup
	for _, fn := range []func() error{
		func() error { _, err := client.Me(ctx); return err },
		func() error { _, err := client.Threads(ctx); return err },
		func() error { _, err := client.Ask(ctx, "a", "one"); return err },
		func() error { _, err := client.Ask(ctx, "b", "two"); return err },
	} {
		wg.Add(1)
		go func(fn func() error) {
			defer wg.Done()
			assert.NoError(t, fn())
		}(fn)
	}
	wg.Wait()
	assert.Equal(t, 1, server.Refreshes(), "rotation would reject a second exchange")
}
