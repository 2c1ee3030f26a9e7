package transport

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileJar is a cookiejar.Jar whose cookies are also indexed and written to a
// JSON file, so the refresh cookie survives CLI restarts.
type FileJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	path  string
	index map[string]persistedCookie
}

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Host     string    `json:"host"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"httpOnly"`
}

func (p *persistedCookie) key() string {
	return p.Host + "|" + p.Domain + "|" + p.Path + "|" + p.Name
}

func (p *persistedCookie) expired(now time.Time) bool {
	return !p.Expires.IsZero() && !now.Before(p.Expires)
}

type cookieSnapshot struct {
	Cookies []persistedCookie `json:"cookies"`
}

// NewFileJar creates a cookie jar persisted at path, loading existing cookies.
func NewFileJar(path string) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	ret := &FileJar{inner: inner, path: path, index: map[string]persistedCookie{}}
	if err = ret.load(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	host := u.Hostname()
	now := time.Now()
	for _, cookie := range cookies {
		entry := persistedCookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Host:     host,
			Domain:   strings.TrimPrefix(cookie.Domain, "."),
			Path:     cookiePath(u, cookie),
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		}
		if cookie.MaxAge > 0 {
			entry.Expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
		}
		if cookie.MaxAge < 0 || entry.expired(now) {
			delete(j.index, entry.key())
			continue
		}
		j.index[entry.key()] = entry
	}
	_ = j.save()
}

// cookiePath mirrors the default-path rule of RFC 6265 section 5.1.4.
func cookiePath(u *neturl.URL, cookie *http.Cookie) string {
	if strings.HasPrefix(cookie.Path, "/") {
		return cookie.Path
	}
	dir := u.Path
	if i := strings.LastIndex(dir, "/"); i > 0 {
		return dir[:i]
	}
	return "/"
}

func (j *FileJar) save() error {
	snap := cookieSnapshot{}
	now := time.Now()
	for key, entry := range j.index {
		if entry.expired(now) {
			delete(j.index, key)
			continue
		}
		snap.Cookies = append(snap.Cookies, entry)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := j.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

func (j *FileJar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snap cookieSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	now := time.Now()
	for _, entry := range snap.Cookies {
		if entry.expired(now) || entry.Host == "" {
			continue
		}
		scheme := "http"
		if entry.Secure {
			scheme = "https"
		}
		host := entry.Host
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			host = "[" + host + "]"
		}
		u := &neturl.URL{Scheme: scheme, Host: host, Path: entry.Path}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     entry.Name,
			Value:    entry.Value,
			Domain:   entry.Domain,
			Path:     entry.Path,
			Expires:  entry.Expires,
			Secure:   entry.Secure,
			HttpOnly: entry.HttpOnly,
		}})
		j.index[entry.key()] = entry
	}
	return nil
}
