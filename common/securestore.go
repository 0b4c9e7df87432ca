package common

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecureStore is the credential-store collaborator: a small key/value store
// for the access token and cached profile fields, expected to survive
// process restarts and to be encrypted at rest. It plays the role the
// keychain plays on mobile platforms.
type SecureStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Keys the auth helper writes. Scoped with a provider prefix so the store
// can be shared with other application state.
const (
	StoreKeyAccessToken = "linkedin:accessToken"
	StoreKeyProfile     = "linkedin:profile"
)

// KeySize is the secret key length required by NewFileSecureStore.
const KeySize = chacha20poly1305.KeySize

// ---------------------------------------------------
// Encrypted file-backed store
// ---------------------------------------------------

// fileSecureStore seals a JSON map with ChaCha20-Poly1305 into a single
// file. A fresh random nonce is generated on every save and stored as the
// file prefix.
type fileSecureStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileSecureStore returns a SecureStore persisting to path, sealed with
// the given 32-byte key. The file is created lazily on first Set.
func NewFileSecureStore(path string, key []byte) (SecureStore, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("secure store key must be %d bytes, got %d", KeySize, len(key))
	}
	return &fileSecureStore{path: path, key: key}, nil
}

func (s *fileSecureStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, found := entries[key]
	return value, found, nil
}

func (s *fileSecureStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

func (s *fileSecureStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, found := entries[key]; !found {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		// nothing secret left, drop the file entirely
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return s.save(entries)
}

func (s *fileSecureStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secure store: %w", err)
	}

	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, errors.New("secure store file is truncated")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal secure store: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode secure store: %w", err)
	}
	return entries, nil
}

func (s *fileSecureStore) save(entries map[string]string) error {
	plain, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write secure store: %w", err)
	}
	return nil
}

// ---------------------------------------------------
// In-memory store
// ---------------------------------------------------

// memorySecureStore keeps entries in a map. Handy for tests and for
// applications that do not want credentials on disk at all.
type memorySecureStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemorySecureStore returns a SecureStore that forgets everything when
// the process exits.
func NewMemorySecureStore() SecureStore {
	return &memorySecureStore{entries: map[string]string{}}
}

func (s *memorySecureStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.entries[key]
	return value, found, nil
}

func (s *memorySecureStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *memorySecureStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
