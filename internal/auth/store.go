package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rfid-attendance/internal/store"
)

var (
	ErrMissingCredentials = errors.New("username and password required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// DefaultSessionKey is the storage key holding the signed-in user.
const DefaultSessionKey = "user"

// State is the authentication state of the Store.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// User is the signed-in user with the password stripped. This is also the
// persisted form.
type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the current sign-in. ID changes on every Login and restore, so
// tokens minted for an earlier session stop matching.
type Session struct {
	ID   string
	User User
}

// Store holds who is signed in and mirrors it into a persisted key.
type Store struct {
	storage     store.Storage
	key         string
	credentials []Credential
	logger      *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCredentials replaces DemoCredentials.
func WithCredentials(creds []Credential) StoreOption {
	return func(s *Store) { s.credentials = creds }
}

// NewStore restores the session saved under key. Missing or unreadable data
// leaves the store anonymous.
func NewStore(ctx context.Context, storage store.Storage, key string, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultSessionKey
	}
	s := &Store{
		storage:     storage,
		key:         key,
		credentials: DemoCredentials,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("session storage unavailable, starting anonymous", zap.Error(err))
		return
	}
	user, err := decodeUser(raw)
	if err != nil {
		s.logger.Warn("discarding malformed session", zap.String("key", s.key), zap.Error(err))
		return
	}
	s.session = &Session{ID: uuid.NewString(), User: user}
	s.logger.Info("session restored", zap.String("username", user.Username))
}

func decodeUser(raw string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, err
	}
	if u.Username == "" {
		return User{}, errors.New("username missing")
	}
	switch u.Role {
	case RoleAdmin, RoleUser:
	default:
		return User{}, fmt.Errorf("unknown role %q", u.Role)
	}
	return u, nil
}

// Login checks username and password against the credential fixture. On
// success the user is persisted and becomes current. A failed attempt leaves
// the state as it was.
func (s *Store) Login(ctx context.Context, username, password string) (Session, error) {
	if username == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	var match *Credential
	for i := range s.credentials {
		c := &s.credentials[i]
		if c.Username == username && c.Password == password {
			match = c
			break
		}
	}
	if match == nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return Session{}, ErrInvalidCredentials
	}

	user := User{Username: match.Username, Role: match.Role}
	raw, err := json.Marshal(user)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, s.key, string(raw)); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	s.session = &Session{ID: uuid.NewString(), User: user}
	s.logger.Info("login", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return *s.session, nil
}

// Logout clears the current user and the persisted key. The in-memory state
// is cleared even when the storage delete fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.logger.Info("logout", zap.String("username", s.session.User.Username))
	}
	s.session = nil
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// State reports whether someone is signed in.
func (s *Store) State() State {
	if s.IsAuthenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}
