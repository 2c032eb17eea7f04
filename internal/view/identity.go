package view

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
)

// IdentityKey is the local storage key of the device-generated member id.
const IdentityKey = "my_profile_id"

const (
	localIDPrefix   = "user-"
	localIDLength   = 9
	localIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// LocalStore is small persistent key/value storage on the member's device.
type LocalStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore is a LocalStore kept as one JSON object in a file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStatePath is the state file under the user's config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "clubboard", "state.json"), nil
}

func (s *FileStore) load() (map[string]string, error) {
	data := map[string]string{}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

// NewLocalID returns "user-" followed by nine random base36 characters.
func NewLocalID() (string, error) {
	buf := make([]byte, localIDLength)
	limit := big.NewInt(int64(len(localIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = localIDAlphabet[n.Int64()]
	}
	return localIDPrefix + string(buf), nil
}

// BootstrapLocalIdentity returns the stored device identity, generating and
// persisting one on first use. Uniqueness across devices is not checked.
func BootstrapLocalIdentity(store LocalStore) (string, error) {
	if id, ok, err := store.Get(IdentityKey); err != nil {
		return "", err
	} else if ok && id != "" {
		return id, nil
	}
	id, err := NewLocalID()
	if err != nil {
		return "", fmt.Errorf("generate member id: %w", err)
	}
	if err := store.Set(IdentityKey, id); err != nil {
		return "", fmt.Errorf("persist member id: %w", err)
	}
	return id, nil
}
