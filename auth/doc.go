// Package auth holds the pieces shared by the authenticated Simon client:
// the authentication endpoint set and the error taxonomy surfaced to callers.
//
// The moving parts live in sub-packages:
//   - store     keeps the current access credential (memory, file, redis, bbolt)
//   - refresh   performs the single-flight refresh exchange
//   - transport injects the credential, replays a request once after refresh
//   - mock      an httptest backend used by tests and local experiments
package auth
