// Package transport dispatches requests to the Simon API with the current
// access credential attached and recovers from an expired credential.
//
// When a request fails with 401 Unauthorized the RoundTripper joins the
// shared refresh exchange (see the refresh package) and replays the original
// request exactly once with the new credential. A replayed request that fails
// with 401 again, or a rejected refresh, is terminal: the credential store is
// cleared and the error is returned to the caller.
//
// Requests to the authentication endpoints (login, refresh) are sent as is:
// they never carry the credential and never trigger a refresh.
//
// RoundTripper also implements http.RoundTripper, so it can back a plain
// *http.Client.
package transport
