// Package session keeps the command-line client's signed-in profile and
// token between invocations, in the operating system's keyring (Secret
// Service on Linux, Keychain on macOS, Credential Manager on Windows).
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/sakif/recipe-share/internal/model"
)

const (
	serviceName = "recipeshare-cli"

	// DefaultKey is the keyring entry used unless the CLI is told otherwise.
	DefaultKey = "session"
)

// ErrNoSession is returned by Load when nobody is signed in.
var ErrNoSession = errors.New("session: not signed in")

// Session is the signed-in state. The CLI loads it once per command and
// passes the value down; nothing else reads the keyring entry.
type Session struct {
	Profile model.Profile `json:"profile"`
	Token   string        `json:"token"`
	Server  string        `json:"server,omitempty"`
}

// Store reads and writes one keyring entry. Separate keys let several
// accounts or servers be signed in side by side.
type Store struct {
	key string
}

func NewStore(key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{key: key}
}

func (s *Store) Key() string { return s.key }

// Save replaces the stored session.
func (s *Store) Save(sess *Session) error {
	if sess == nil || sess.Token == "" {
		return errors.New("session: refusing to save a session without a token")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encoding: %w", err)
	}
	if err := keyring.Set(serviceName, s.key, string(data)); err != nil {
		return fmt.Errorf("session: writing keyring entry %q: %w", s.key, err)
	}
	return nil
}

// Load returns the stored session or ErrNoSession.
func (s *Store) Load() (*Session, error) {
	value, err := keyring.Get(serviceName, s.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session: reading keyring entry %q: %w", s.key, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(value), &sess); err != nil {
		return nil, fmt.Errorf("session: keyring entry %q is corrupt: %w", s.key, err)
	}
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Clear signs out. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := keyring.Delete(serviceName, s.key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("session: removing keyring entry %q: %w", s.key, err)
	}
	return nil
}
