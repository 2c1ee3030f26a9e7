package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/simon/auth"
	"io"
	"net/http"
)

// Exchanger trades the long-lived session artifact for a new access credential.
type Exchanger interface {
	Exchange(ctx context.Context) (string, error)
}

// ExchangerFunc adapts a function to Exchanger.
type ExchangerFunc func(ctx context.Context) (string, error)

func (f ExchangerFunc) Exchange(ctx context.Context) (string, error) {
	return f(ctx)
}

// HTTPExchanger posts an empty body to the refresh endpoint. The refresh
// artifact is an HttpOnly cookie, so Transport is expected to carry a cookie jar.
type HTTPExchanger struct {
	URL       string
	Transport http.RoundTripper
}

// NewHTTPExchanger creates an exchanger for refreshURL.
func NewHTTPExchanger(refreshURL string, transport http.RoundTripper) *HTTPExchanger {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &HTTPExchanger{URL: refreshURL, Transport: transport}
}

type tokenResponse struct {
	Access string `json:"access"`
}

func (e *HTTPExchanger) Exchange(ctx context.Context) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, http.NoBody)
	if err != nil {
		return "", &auth.RefreshError{Err: err}
	}
	request.Header.Set("Accept", "application/json")
	response, err := e.Transport.RoundTrip(request)
	if err != nil {
		return "", &auth.RefreshError{Err: &auth.NetworkError{Method: request.Method, URL: e.URL, Err: err}}
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &auth.RefreshError{StatusCode: response.StatusCode, Err: fmt.Errorf("failed to read refresh response: %w", err)}
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", &auth.RefreshError{StatusCode: response.StatusCode, Body: body}
	}
	var payload tokenResponse
	if err = json.Unmarshal(body, &payload); err != nil {
		return "", &auth.RefreshError{StatusCode: response.StatusCode, Body: body, Err: fmt.Errorf("failed to decode refresh response: %w", err)}
	}
	if payload.Access == "" {
		return "", &auth.RefreshError{StatusCode: response.StatusCode, Body: body, Err: auth.ErrMissingAccess}
	}
	return payload.Access, nil
}
