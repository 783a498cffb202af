// Package auth keeps the bearer token the API client attaches to requests.
// Obtaining or refreshing tokens is out of scope; tokens are stored as given.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// TokenKey is the fixed storage key the token lives under.
const TokenKey = "auth_token"

// TokenStore persists the current bearer token.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	Clear() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

// NewMemoryStore creates a MemoryStore holding token (may be empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token, now: time.Now}
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return usable(m.token, m.now())
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	m.token = strings.TrimSpace(token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.SetToken("")
}

// FileStore is a small key/value JSON file, the CLI's equivalent of browser
// local storage. The token lives under TokenKey; other keys are preserved.
type FileStore struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	logger *logging.Logger
}

// NewFileStore creates a FileStore at path. The file is created lazily.
func NewFileStore(path string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &FileStore{path: path, now: time.Now, logger: logger}
}

// Token reads the file on every call so a token set by another process is
// picked up.
func (f *FileStore) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		f.logger.Warn("token store unreadable", "path", f.path, "error", err)
		return "", false
	}
	token, ok := usable(values[TokenKey], f.now())
	if !ok && values[TokenKey] != "" {
		f.logger.Debug("stored token expired; not attaching", "path", f.path)
	}
	return token, ok
}

func (f *FileStore) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[TokenKey] = strings.TrimSpace(token)
	return f.write(values)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	delete(values, TokenKey)
	return f.write(values)
}

func (f *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: read %s: %w", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("auth: decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("auth: create dir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("auth: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("auth: replace %s: %w", f.path, err)
	}
	return nil
}

// usable rejects empty tokens and JWTs whose exp has passed. Opaque tokens
// are passed through; the server remains the authority.
func usable(token string, now time.Time) (string, bool) {
	if token == "" {
		return "", false
	}
	if exp, ok := Expiry(token); ok && !now.Before(exp) {
		return "", false
	}
	return token, true
}

// Expiry returns the exp claim of a JWT without verifying its signature.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
