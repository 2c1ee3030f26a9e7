package auth

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"net/http"
	"testing"
)

func TestIsEndpoint(t *testing.T) {
	var testCases = []struct {
		description string
		target      string
		expect      bool
	}{
		{description: "login", target: "http://localhost:8000/api/auth/token/", expect: true},
		{description: "refresh", target: "http://localhost:8000/api/auth/token/refresh/", expect: true},
		{description: "missing trailing slash", target: "/api/auth/token/refresh", expect: true},
		{description: "query ignored", target: "http://h/api/auth/token/?next=1", expect: true},
		{description: "logout is not exempt", target: "http://h/api/auth/logout/", expect: false},
		{description: "me", target: "http://h/api/auth/me/", expect: false},
		{description: "protected", target: "http://h/api/chat/threads/", expect: false},
		{description: "partial segment", target: "http://h/api/oauth/token/", expect: false},
		{description: "partial segment refresh", target: "http://h/api/myauth/token/refresh/", expect: false},
		{description: "relative path", target: "auth/token/", expect: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, IsEndpoint(testCase.target, DefaultEndpoints), testCase.description)
	}
}

func TestErrors(t *testing.T) {
	cause := &HTTPError{Method: http.MethodGet, URL: "/protected", StatusCode: http.StatusUnauthorized, Body: []byte(`{"detail":"Token is invalid or expired"}`)}
	assert.Equal(t, "Token is invalid or expired", cause.Detail())
	assert.Contains(t, cause.Error(), "401")

	exhausted := error(&AuthExhaustedError{Cause: cause})
	assert.True(t, errors.Is(exhausted, ErrUnauthenticated))
	var httpErr *HTTPError
	assert.True(t, errors.As(exhausted, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	refreshErr := error(&RefreshError{StatusCode: http.StatusUnauthorized, Body: []byte(`{"detail":"Refresh cookie missing"}`)})
	assert.True(t, errors.Is(refreshErr, ErrUnauthenticated))
	assert.Contains(t, refreshErr.Error(), "Refresh cookie missing")

	network := error(&NetworkError{Method: http.MethodGet, URL: "/x", Err: context.Canceled})
	assert.True(t, errors.Is(network, context.Canceled))
	assert.False(t, errors.Is(network, ErrUnauthenticated))
}

func TestURL(t *testing.T) {
	var testCases = []struct {
		base   string
		path   string
		expect string
	}{
		{base: "http://localhost:8000/api/", path: TokenPath, expect: "http://localhost:8000/api/auth/token/"},
		{base: "http://localhost:8000/api", path: RefreshPath, expect: "http://localhost:8000/api/auth/token/refresh/"},
		{base: "http://localhost:8000/api/", path: "/chat/threads/", expect: "http://localhost:8000/api/chat/threads/"},
	}
	for _, testCase := range testCases {
		actual, err := URL(testCase.base, testCase.path)
		assert.NoError(t, err)
		assert.Equal(t, testCase.expect, actual)
	}
}
