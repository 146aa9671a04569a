package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"onlinemall/pkg/domain"
	"onlinemall/pkg/store"
)

// Session holds the authenticated identity and mirrors it to durable storage
// so it survives a restart. A session is logged in exactly when it has a token.
type Session struct {
	mu      sync.RWMutex
	storage store.Storage
	token   string
	user    *domain.UserInfo
}

// NewSession hydrates a session from storage. Unreadable entries are treated
// as absent. Malformed user info discards the whole stored session and the
// session starts logged out. A nil storage keeps the session in memory only.
func NewSession(storage store.Storage) *Session {
	if storage == nil {
		storage = store.NewMemoryStorage()
	}
	s := &Session{storage: storage}
	user, err := loadUserInfo(storage)
	if err != nil {
		slog.Warn("session user info malformed, discarding stored session", "err", err)
		if rmErr := errors.Join(
			storage.Remove(store.KeyAuthToken),
			storage.Remove(store.KeyUserInfo),
		); rmErr != nil {
			slog.Warn("discard stored session failed", "err", rmErr)
		}
		return s
	}
	s.token = loadToken(storage)
	s.user = user
	return s
}

func loadToken(storage store.Storage) string {
	token, ok, err := storage.Get(store.KeyAuthToken)
	if err != nil {
		slog.Warn("session token unreadable", "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// loadUserInfo returns an error only when the stored value cannot be decoded.
func loadUserInfo(storage store.Storage) (*domain.UserInfo, error) {
	raw, ok, err := storage.Get(store.KeyUserInfo)
	if err != nil {
		slog.Warn("session user info unreadable", "err", err)
		return nil, nil
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var user *domain.UserInfo
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUser replaces the token and user info and persists both before returning.
// The token is stored verbatim; an empty token logs the session out. The
// in-memory state is updated even when persisting fails; the storage error is
// returned.
func (s *Session) SetUser(token string, user *domain.UserInfo) error {
	var userCopy *domain.UserInfo
	if user != nil {
		u := *user
		userCopy = &u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = userCopy

	var errs []error
	if token == "" {
		errs = append(errs, s.storage.Remove(store.KeyAuthToken))
	} else {
		errs = append(errs, s.storage.Set(store.KeyAuthToken, token))
	}
	if userCopy == nil {
		errs = append(errs, s.storage.Remove(store.KeyUserInfo))
	} else {
		data, err := json.Marshal(userCopy)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode user info: %w", err))
		} else {
			errs = append(errs, s.storage.Set(store.KeyUserInfo, string(data)))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// ClearUser logs out: both fields are nulled and both durable keys removed.
func (s *Session) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	err := errors.Join(
		s.storage.Remove(store.KeyAuthToken),
		s.storage.Remove(store.KeyUserInfo),
	)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, if any.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// UserInfo returns a copy of the cached profile, if any.
func (s *Session) UserInfo() (domain.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.UserInfo{}, false
	}
	return *s.user, true
}

// TokenExpiry reads the exp claim of a JWT-shaped token without verifying it.
// The result is informational and plays no part in IsLoggedIn.
func TokenExpiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
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
