package auth

import (
	"net/url"
	"strings"
)

// Endpoint paths, relative to the API base URL.
const (
	TokenPath   = "auth/token/"
	RefreshPath = "auth/token/refresh/"
	LogoutPath  = "auth/logout/"
	MePath      = "auth/me/"
)

// RetryHeader marks a replayed request; it is diagnostic only.
const RetryHeader = "X-Debug-Retry"

// DefaultEndpoints is the set of paths exempt from credential injection and
// from the refresh trigger. A failed refresh must never start another refresh.
var DefaultEndpoints = []string{TokenPath, RefreshPath}

// IsEndpoint reports whether the path of target (absolute URL or path) ends
// with one of endpoints on a segment boundary.
func IsEndpoint(target string, endpoints []string) bool {
	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, candidate := range endpoints {
		candidate = "/" + strings.TrimPrefix(candidate, "/")
		if !strings.HasSuffix(candidate, "/") {
			candidate += "/"
		}
		// match whole segments only
		if strings.HasSuffix(path, candidate) {
			return true
		}
	}
	return false
}

// URL resolves path against baseURL; baseURL is treated as a directory.
func URL(baseURL, path string) (string, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
