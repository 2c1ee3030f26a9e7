package transport

import (
	"context"
	"errors"
	"github.com/viant/simon/auth"
	"github.com/viant/simon/auth/refresh"
	"github.com/viant/simon/auth/store"
	"golang.org/x/oauth2"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const logoutTimeout = 5 * time.Second

// RoundTripper is the credential injecting dispatcher with the refresh and replay policy.
type RoundTripper struct {
	store       store.Store
	coordinator *refresh.Coordinator
	transport   http.RoundTripper
	endpoints   []string
	logoutURL   string
	timeout     time.Duration
	logger      *slog.Logger
}

// New creates a RoundTripper using aStore for the credential and coordinator for refresh.
func New(aStore store.Store, coordinator *refresh.Coordinator, options ...Option) *RoundTripper {
	ret := &RoundTripper{
		store:       aStore,
		coordinator: coordinator,
		transport:   http.DefaultTransport,
		endpoints:   auth.DefaultEndpoints,
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Store returns the credential store.
func (r *RoundTripper) Store() store.Store {
	return r.store
}

// Coordinator returns the refresh coordinator.
func (r *RoundTripper) Coordinator() *refresh.Coordinator {
	return r.coordinator
}

// Send dispatches request. A non-2xx outcome is returned as *auth.HTTPError;
// a 401 is recovered by one refresh and one replay unless request is an
// authentication endpoint or has already been replayed.
func (r *RoundTripper) Send(ctx context.Context, request *Request) (*Response, error) {
	return r.send(ctx, request, nil)
}

func (r *RoundTripper) send(ctx context.Context, request *Request, token *oauth2.Token) (*Response, error) {
	response, sentWith, err := r.dispatch(ctx, request, token)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusUnauthorized || r.isEndpoint(request.URL) {
		return response.result()
	}
	if request.Retried {
		r.logger.Warn("replayed request unauthorized, giving up", "method", request.Method, "url", request.URL)
		r.clear()
		return nil, &auth.AuthExhaustedError{Cause: response.httpError()}
	}
	fresh, err := r.refreshed(ctx, sentWith)
	if err != nil {
		var refreshErr *auth.RefreshError
		if errors.As(err, &refreshErr) {
			r.terminate(ctx)
			r.clear()
		}
		return nil, err
	}
	r.logger.Debug("replaying request", "method", request.Method, "url", request.URL)
	return r.send(ctx, request.replay(), fresh)
}

// refreshed returns a credential newer than sentWith: the stored one if
// another flight already replaced it, otherwise the outcome of a refresh.
func (r *RoundTripper) refreshed(ctx context.Context, sentWith string) (*oauth2.Token, error) {
	if current, ok := r.store.LookupToken(); ok && current.AccessToken != sentWith {
		return current, nil
	}
	return r.coordinator.Refresh(ctx)
}

// dispatch performs one attempt and returns the credential it carried.
func (r *RoundTripper) dispatch(ctx context.Context, request *Request, token *oauth2.Token) (*Response, string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	httpRequest, err := request.httpRequest(ctx)
	if err != nil {
		return nil, "", err
	}
	sentWith := ""
	if !r.isEndpoint(request.URL) {
		if token == nil {
			token, _ = r.store.LookupToken()
		}
		if token != nil && token.AccessToken != "" {
			token.SetAuthHeader(httpRequest)
			sentWith = token.AccessToken
		}
	}
	httpResponse, err := r.transport.RoundTrip(httpRequest)
	if err != nil {
		return nil, "", &auth.NetworkError{Method: request.Method, URL: request.URL, Err: err}
	}
	defer httpResponse.Body.Close()
	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, "", &auth.NetworkError{Method: request.Method, URL: request.URL, Err: err}
	}
	return &Response{StatusCode: httpResponse.StatusCode, Header: httpResponse.Header, Body: body, Request: request}, sentWith, nil
}

// terminate asks the server to end the session; failures are ignored.
func (r *RoundTripper) terminate(ctx context.Context) {
	if r.logoutURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.logoutURL, http.NoBody)
	if err != nil {
		return
	}
	response, err := r.transport.RoundTrip(request)
	if err != nil {
		r.logger.Debug("session termination failed", "error", err)
		return
	}
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
}

func (r *RoundTripper) clear() {
	if err := r.store.ClearToken(); err != nil {
		r.logger.Warn("failed to clear credential", "error", err)
	}
}

func (r *RoundTripper) isEndpoint(URL string) bool {
	return auth.IsEndpoint(URL, r.endpoints)
}

// RoundTrip implements http.RoundTripper. Non-2xx responses are returned as
// responses; only transport and terminal authentication failures are errors.
func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	request, err := FromHTTP(req)
	if err != nil {
		return nil, err
	}
	response, err := r.Send(req.Context(), request)
	if err == nil {
		return toHTTPResponse(req, response.StatusCode, response.Header, response.Body), nil
	}
	if errors.Is(err, auth.ErrUnauthenticated) {
		return nil, err
	}
	var httpErr *auth.HTTPError
	if errors.As(err, &httpErr) {
		return toHTTPResponse(req, httpErr.StatusCode, httpErr.Header, httpErr.Body), nil
	}
	var networkErr *auth.NetworkError
	if errors.As(err, &networkErr) {
		return nil, networkErr.Err
	}
	return nil, err
}
