// Package cli implements the simon command line: login, profile, chat and
// logout commands sharing one persisted session.
package cli
