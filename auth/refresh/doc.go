// Package refresh performs the refresh-credential exchange on behalf of every
// request that failed with a stale credential.
//
// Coordinator coalesces concurrent refresh attempts into one in-flight
// exchange (golang.org/x/sync/singleflight). All callers that join while the
// exchange is pending receive the same outcome; the handle is dropped as soon
// as the exchange settles, so a later 401 starts a new one.
package refresh
