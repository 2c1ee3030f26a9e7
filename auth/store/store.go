package store

import (
	"context"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"strings"
	"sync"
)

// Store holds at most one live access credential.
type Store interface {
	// LookupToken returns the current credential; false means unauthenticated.
	LookupToken() (*oauth2.Token, bool)
	// AddToken replaces the current credential.
	AddToken(token *oauth2.Token) error
	// ClearToken removes the current credential.
	ClearToken() error
}

// NewToken wraps an opaque access credential as a bearer token.
func NewToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
}

// New creates a store for URL:
//   - "" or mem:// keeps the credential in memory
//   - redis:// or rediss:// stores it in redis under DefaultRedisKey
//   - bolt://<path> stores it in a bbolt database file
//   - anything else is treated as an afs file URL (or plain path)
func New(ctx context.Context, URL string) (Store, error) {
	switch {
	case URL == "" || strings.HasPrefix(URL, "mem://"):
		return NewMemoryStore(), nil
	case strings.HasPrefix(URL, "redis://") || strings.HasPrefix(URL, "rediss://"):
		options, err := redis.ParseURL(URL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(redis.NewClient(options)), nil
	case strings.HasPrefix(URL, "bolt://"):
		return NewBoltStoreFromFile(strings.TrimPrefix(URL, "bolt://"), nil)
	default:
		return NewFileStore(ctx, URL)
	}
}

func isEmpty(token *oauth2.Token) bool {
	return token == nil || token.AccessToken == ""
}

type memoryStore struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

func (m *memoryStore) LookupToken() (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if isEmpty(m.token) {
		return nil, false
	}
	return m.token, true
}

func (m *memoryStore) AddToken(token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if isEmpty(token) {
		m.token = nil
		return nil
	}
	m.token = token
	return nil
}

func (m *memoryStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}

// NewMemoryStore returns a process local store.
func NewMemoryStore() Store {
	return &memoryStore{}
}
