// Package mock provides an in-process fake of the Simon backend for tests and
// local experiments.
//
// It issues short-lived HS256 access tokens, keeps the refresh token in an
// HttpOnly cookie scoped to /api/auth/, rotates it on every refresh and
// blacklists the previous one (reuse fails with 401), and serves the chat
// endpoints behind bearer authentication. Expire invalidates every access
// token issued so far, which is how tests provoke a 401.
package mock
