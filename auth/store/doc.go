// Package store keeps the current short-lived access credential used by the
// authenticated transport.
//
// The in-memory default is fine for CLI tools and tests and keeps the secret
// out of persistent storage. FileStore, RedisStore and BoltStore trade that for
// surviving process restarts. Use New to pick a backend from a URL.
package store
