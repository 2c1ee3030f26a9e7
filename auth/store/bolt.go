package store

import (
	"encoding/json"
	"fmt"
	"go.etcd.io/bbolt"
	"golang.org/x/oauth2"
)

var (
	boltBucket = []byte("credentials")
	boltKey    = []byte("access")
)

// BoltStore keeps the credential in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore returns a store backed by db.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating credentials bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// NewBoltStoreFromFile opens a bbolt database at path.
func NewBoltStoreFromFile(path string, options *bbolt.Options) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	ret, err := NewBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return ret, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) LookupToken() (*oauth2.Token, bool) {
	var token *oauth2.Token
	_ = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(boltBucket).Get(boltKey)
		if data == nil {
			return nil
		}
		candidate := &oauth2.Token{}
		if err := json.Unmarshal(data, candidate); err != nil {
			return err
		}
		token = candidate
		return nil
	})
	if isEmpty(token) {
		return nil, false
	}
	return token, true
}

func (s *BoltStore) AddToken(token *oauth2.Token) error {
	if isEmpty(token) {
		return s.ClearToken()
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put(boltKey, data)
	})
}

func (s *BoltStore) ClearToken() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(boltKey)
	})
}
