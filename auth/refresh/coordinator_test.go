package refresh

import (
	"context"
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/store"
	"golang.org/x/oauth2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestCoordinator_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	var mux sync.Mutex
	calls := 0
	exchanger := ExchangerFunc(func(ctx context.Context) (string, error) {
		mux.Lock()
		calls++
		n := calls
		mux.Unlock()
		<-release
		return fmt.Sprintf("tok%d", n+1), nil
	})
	aStore := store.NewMemoryStore()
	coordinator := New(exchanger, aStore)

	const n = 16
	var wg sync.WaitGroup
	tokens := make(chan *oauth2.Token, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := coordinator.Refresh(context.Background())
			assert.NoError(t, err)
			tokens <- token
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(tokens)

	assert.EqualValues(t, 1, coordinator.Exchanges())
	for token := range tokens {
		require.NotNil(t, token)
		assert.Equal(t, "tok2", token.AccessToken)
	}
	current, ok := aStore.LookupToken()
	require.True(t, ok)
	assert.Equal(t, "tok2", current.AccessToken)
}

func TestCoordinator_HandleClearedAfterSettle(t *testing.T) {
	counter := 0
	coordinator := New(ExchangerFunc(func(ctx context.Context) (string, error) {
		counter++
		return fmt.Sprintf("tok%d", counter), nil
	}), store.NewMemoryStore())

	first, err := coordinator.Refresh(context.Background())
	require.NoError(t, err)
	second, err := coordinator.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok1", first.AccessToken)
	assert.Equal(t, "tok2", second.AccessToken)
	assert.EqualValues(t, 2, coordinator.Exchanges())
}

func TestCoordinator_Failure(t *testing.T) {
	aStore := store.NewMemoryStore()
	require.NoError(t, aStore.AddToken(store.NewToken("tok1")))

	var testCases = []struct {
		description string
		err         error
		expectCode  int
	}{
		{description: "rejected exchange", err: &auth.RefreshError{StatusCode: http.StatusUnauthorized}, expectCode: http.StatusUnauthorized},
		{description: "plain error is wrapped", err: errors.New("boom")},
	}
	for _, testCase := range testCases {
		coordinator := New(ExchangerFunc(func(ctx context.Context) (string, error) {
			return "", testCase.err
		}), aStore)
		token, err := coordinator.Refresh(context.Background())
		assert.Nil(t, token, testCase.description)
		var refreshErr *auth.RefreshError
		if assert.True(t, errors.As(err, &refreshErr), testCase.description) {
			assert.Equal(t, testCase.expectCode, refreshErr.StatusCode, testCase.description)
		}
	}
	current, ok := aStore.LookupToken()
	require.True(t, ok, "coordinator leaves clearing to the replay policy")
	assert.Equal(t, "tok1", current.AccessToken)
}

func TestCoordinator_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	exchangeErr := make(chan error, 1)
	coordinator := New(ExchangerFunc(func(ctx context.Context) (string, error) {
		<-release
		exchangeErr <- ctx.Err()
		return "tok2", nil
	}), store.NewMemoryStore())

	cancelled, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := coordinator.Refresh(cancelled)
		first <- err
	}()
	second := make(chan *oauth2.Token, 1)
	go func() {
		token, err := coordinator.Refresh(context.Background())
		assert.NoError(t, err)
		second <- token
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	token := <-second
	require.NotNil(t, token)
	assert.Equal(t, "tok2", token.AccessToken)
	assert.NoError(t, <-exchangeErr, "shared exchange must not see caller cancellation")
	assert.EqualValues(t, 1, coordinator.Exchanges())
}

func TestHTTPExchanger(t *testing.T) {
	var testCases = []struct {
		description string
		status      int
		body        string
		expect      string
		expectCode  int
		expectErr   error
	}{
		{description: "success", status: http.StatusOK, body: `{"access":"tok2"}`, expect: "tok2"},
		{description: "rejected", status: http.StatusUnauthorized, body: `{"detail":"Refresh cookie missing"}`, expectCode: http.StatusUnauthorized},
		{description: "missing access", status: http.StatusOK, body: `{}`, expectCode: http.StatusOK, expectErr: auth.ErrMissingAccess},
	}
	for _, testCase := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(testCase.status)
			_, _ = w.Write([]byte(testCase.body))
		}))
		access, err := NewHTTPExchanger(server.URL+"/api/auth/token/refresh/", nil).Exchange(context.Background())
		server.Close()
		if testCase.expect != "" {
			assert.NoError(t, err, testCase.description)
			assert.Equal(t, testCase.expect, access, testCase.description)
			continue
		}
		var refreshErr *auth.RefreshError
		if !assert.True(t, errors.As(err, &refreshErr), testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expectCode, refreshErr.StatusCode, testCase.description)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
		}
	}
}

type unwritableStore struct {
	store.Store
}

func (s *unwritableStore) AddToken(token *oauth2.Token) error {
	return errors.New("disk full")
}

func TestCoordinator_CommitFailure(t *testing.T) {
	coordinator := New(ExchangerFunc(func(ctx context.Context) (string, error) {
		return "tok2", nil
	}), &unwritableStore{Store: store.NewMemoryStore()})

	token, err := coordinator.Refresh(context.Background())
	require.NoError(t, err, "accepted exchange is not a refresh rejection")
	assert.Equal(t, "tok2", token.AccessToken)
}

func TestCoordinator_Timeout(t *testing.T) {
	coordinator := New(ExchangerFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), store.NewMemoryStore(), WithTimeout(50*time.Millisecond))

	started := time.Now()
	token, err := coordinator.Refresh(context.Background())
	assert.Nil(t, token)
	var refreshErr *auth.RefreshError
	require.True(t, errors.As(err, &refreshErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, DefaultTimeout, New(nil, store.NewMemoryStore()).timeout)
}
