package store

import (
	"errors"
	"strings"
)

// Durable keys written by the session layer.
const (
	KeyAuthToken = "authToken"
	KeyUserInfo  = "userInfo"
)

// ErrKeyRequired is returned when an operation is called with a blank key.
var ErrKeyRequired = errors.New("storage key required")

// Storage is durable client-side key/value storage. Values are opaque strings;
// writes are synchronous and must be visible to a fresh Storage opened on the
// same backing location.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrKeyRequired
	}
	return key, nil
}
