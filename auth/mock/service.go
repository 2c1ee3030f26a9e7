package mock

import (
	"crypto/rand"
	"fmt"
	"github.com/viant/simon/internal/collection"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// CookieName is the refresh cookie name.
	CookieName = "refresh"
	// CookiePath scopes the refresh cookie to the auth endpoints.
	CookiePath = "/api/auth/"
	// DefaultEmail and DefaultPassword identify the default user.
	DefaultEmail    = "simon@example.com"
	DefaultPassword = "password123"
)

// User is an account known to the service.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"-"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Record captures what a request carried.
type Record struct {
	Method        string
	Path          string
	Authorization string
	Retry         string
}

// Service simulates the Simon backend.
type Service struct {
	Secret       []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	RefreshDelay time.Duration

	generation atomic.Int64
	refreshes  atomic.Int64
	logouts    atomic.Int64

	mu            sync.Mutex
	users         map[string]*User
	refreshTokens map[string]*refreshToken
	threads       map[string]*thread
	records       []Record
	overrides     *collection.SyncMap[string, http.HandlerFunc]
}

type refreshToken struct {
	email   string
	expiry  time.Time
	revoked bool
}

// Option customises Service.
type Option func(*Service)

// WithUser registers a user.
func WithUser(user *User) Option {
	return func(s *Service) {
		if user.ID == 0 {
			user.ID = len(s.users) + 1
		}
		s.users[user.Email] = user
	}
}

// WithAccessTTL sets access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.AccessTTL = ttl
	}
}

// WithRefreshDelay delays every refresh exchange, widening the window in which concurrent 401s pile up.
func WithRefreshDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.RefreshDelay = delay
	}
}

// NewService creates a service with the default user registered.
func NewService(opts ...Option) (*Service, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %v", err)
	}
	ret := &Service{
		Secret:        secret,
		AccessTTL:     5 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		users:         map[string]*User{},
		refreshTokens: map[string]*refreshToken{},
		threads:       map[string]*thread{},
		overrides:     collection.NewSyncMap[string, http.HandlerFunc](),
	}
	ret.users[DefaultEmail] = &User{ID: 1, Username: "simon", Email: DefaultEmail, Password: DefaultPassword}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// Expire invalidates every access token issued so far.
func (s *Service) Expire() {
	s.generation.Add(1)
}

// OverrideRefresh replaces the refresh endpoint behaviour; nil restores it.
func (s *Service) OverrideRefresh(handler http.HandlerFunc) {
	s.override("refresh", handler)
}

// OverrideLogout replaces the logout endpoint behaviour; nil restores it.
func (s *Service) OverrideLogout(handler http.HandlerFunc) {
	s.override("logout", handler)
}

func (s *Service) override(name string, handler http.HandlerFunc) {
	if handler == nil {
		s.overrides.Delete(name)
		return
	}
	s.overrides.Put(name, handler)
}

func (s *Service) overridden(name string) http.HandlerFunc {
	handler, _ := s.overrides.Get(name)
	return handler
}

// Refreshes returns the number of refresh exchanges received.
func (s *Service) Refreshes() int {
	return int(s.refreshes.Load())
}

// Logouts returns the number of logout calls received.
func (s *Service) Logouts() int {
	return int(s.logouts.Load())
}

// Records returns requests received for path (all paths when empty).
func (s *Service) Records(path string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret []Record
	for _, record := range s.records {
		if path == "" || record.Path == path {
			ret = append(ret, record)
		}
	}
	return ret
}

func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.records = append(s.records, Record{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Retry:         r.Header.Get("X-Debug-Retry"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}
