package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is matched (errors.Is) by every terminal authentication failure.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMissingAccess is returned when a token response carries no access credential.
	ErrMissingAccess = errors.New("token response missing access credential")
)

// NetworkError reports a transport failure; such requests are never retried.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Detail returns the server supplied `detail` message, if any.
func (e *HTTPError) Detail() string {
	return detail(e.Body)
}

// RefreshError reports a rejected or failed refresh exchange. It is terminal:
// the credential is cleared and this error replaces the original 401.
type RefreshError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *RefreshError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("refresh credential: %v", e.Err)
	case detail(e.Body) != "":
		return fmt.Sprintf("refresh credential: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), detail(e.Body))
	default:
		return fmt.Sprintf("refresh credential: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrUnauthenticated }

// AuthExhaustedError reports a request that failed with 401 after it had already been replayed.
type AuthExhaustedError struct {
	Cause *HTTPError
}

func (e *AuthExhaustedError) Error() string {
	return fmt.Sprintf("authentication exhausted: %v", e.Cause)
}

func (e *AuthExhaustedError) Unwrap() error { return e.Cause }

func (e *AuthExhaustedError) Is(target error) bool { return target == ErrUnauthenticated }

func detail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Detail
}
