// Package session keeps the bearer token used to authenticate against the
// contacts API, and the username that goes with it. Both are written through
// to durable storage so a session survives restarts.
package session

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Storage keys. They are always written and cleared together.
const (
	TokenKey    = "authToken"
	UsernameKey = "authUsername"
)

// Store owns the session token and username
type Store struct {
	mu       sync.RWMutex
	storage  Storage
	log      *zap.Logger
	token    string
	username string
}

// NewStore loads any persisted session from storage. Storage read failures
// are logged and treated as "no session".
func NewStore(storage Storage, log *zap.Logger) *Store {
	s := &Store{storage: storage, log: log}

	token, ok, err := storage.Get(TokenKey)
	if err != nil || !ok {
		if err != nil {
			log.Warn("reading session token", zap.Error(err))
		}
		return s
	}

	username, _, err := storage.Get(UsernameKey)
	if err != nil {
		log.Warn("reading session username", zap.Error(err))
		username = ""
	}

	s.token = token
	s.username = username
	return s
}

// SetToken stores token and username. An empty token clears both.
func (s *Store) SetToken(token, username string) {
	if token == "" {
		s.Clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.username = username

	if err := s.storage.Set(TokenKey, token); err != nil {
		s.log.Warn("persisting session token", zap.Error(err))
	}
	if username != "" {
		if err := s.storage.Set(UsernameKey, username); err != nil {
			s.log.Warn("persisting session username", zap.Error(err))
		}
	} else if err := s.storage.Delete(UsernameKey); err != nil {
		s.log.Warn("clearing session username", zap.Error(err))
	}
}

// Clear drops the token and username
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.username = ""

	if err := s.storage.Delete(TokenKey); err != nil {
		s.log.Warn("clearing session token", zap.Error(err))
	}
	if err := s.storage.Delete(UsernameKey); err != nil {
		s.log.Warn("clearing session username", zap.Error(err))
	}
}

// HasToken reports whether a token is held
func (s *Store) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "" if none
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the stored username, falling back to the sub claim of
// the token. It returns "" when neither is available.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.username != "" {
		return s.username
	}
	if s.token == "" {
		return ""
	}
	return SubjectFromToken(s.token)
}

// SubjectFromToken decodes the payload of a three-part bearer token and
// returns its sub claim. The signature is not checked; the server remains
// the authority on whether the token is valid. Malformed tokens yield "".
func SubjectFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
