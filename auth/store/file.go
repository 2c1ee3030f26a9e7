package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/afs"
	"golang.org/x/oauth2"
	"sync"
)

// FileStore persists the credential as a JSON snapshot at an afs URL, so a
// CLI session survives restarts. Reads are served from memory.
type FileStore struct {
	mu    sync.RWMutex
	ctx   context.Context
	fs    afs.Service
	URL   string
	token *oauth2.Token
}

type fileSnapshot struct {
	Token *oauth2.Token `json:"token,omitempty"`
}

// NewFileStore creates a store persisted at URL, loading any existing snapshot.
func NewFileStore(ctx context.Context, URL string) (*FileStore, error) {
	ret := &FileStore{ctx: context.WithoutCancel(ctx), fs: afs.New(), URL: URL}
	if err := ret.load(); err != nil {
		return nil, fmt.Errorf("failed to load credential from %v: %w", URL, err)
	}
	return ret, nil
}

func (f *FileStore) LookupToken() (*oauth2.Token, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if isEmpty(f.token) {
		return nil, false
	}
	return f.token, true
}

func (f *FileStore) AddToken(token *oauth2.Token) error {
	if isEmpty(token) {
		return f.ClearToken()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return f.save()
}

func (f *FileStore) ClearToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = nil
	exists, err := f.fs.Exists(f.ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	return f.fs.Delete(f.ctx, f.URL)
}

func (f *FileStore) save() error {
	data, err := json.MarshalIndent(fileSnapshot{Token: f.token}, "", "  ")
	if err != nil {
		return err
	}
	return f.fs.Upload(f.ctx, f.URL, 0o600, bytes.NewReader(data))
}

func (f *FileStore) load() error {
	exists, err := f.fs.Exists(f.ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	data, err := f.fs.DownloadWithURL(f.ctx, f.URL)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var snap fileSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if !isEmpty(snap.Token) {
		f.token = snap.Token
	}
	return nil
}
