// Package storage is a typed key-value layer over a synchronous,
// string-keyed medium. Values are JSON encoded on write and decoded on read;
// a value that cannot be decoded reads as absent so callers can fall back to
// their defaults.
package storage

import (
	"fmt"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// Medium is the durable backend a Storage writes through to. Every method
// completes synchronously from the caller's point of view.
type Medium interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Clear() error
	Len() (int, error)
	// Key returns the key at index in ascending key order.
	Key(index int) (string, bool, error)
}

// Key names a stored value of type T.
type Key[T any] string

var codec = sonic.ConfigStd

// Storage wraps a Medium with JSON encoding.
type Storage struct {
	medium Medium
	logger log.FieldLogger
}

// New returns a Storage writing to m.
func New(m Medium) *Storage {
	return &Storage{medium: m, logger: log.StandardLogger()}
}

// WithLogger replaces the logger used to report swallowed read failures.
func (s *Storage) WithLogger(l log.FieldLogger) *Storage {
	s.logger = l
	return s
}

// Get reads and decodes the value stored under key. The boolean is false when
// the key is absent, the medium could not be read, or the stored text is not
// valid JSON for T.
func Get[T any](s *Storage, key Key[T]) (T, bool) {
	var value T

	raw, ok, err := s.medium.GetItem(string(key))
	if err != nil {
		s.logger.WithError(err).WithField("key", string(key)).Warn("storage read failed")
		return value, false
	}
	if !ok || raw == "" {
		return value, false
	}

	if err := codec.UnmarshalFromString(raw, &value); err != nil {
		s.logger.WithError(err).WithField("key", string(key)).Warn("discarding undecodable stored value")
		var zero T
		return zero, false
	}
	return value, true
}

// Set encodes value and writes it under key.
func Set[T any](s *Storage, key Key[T], value T) error {
	raw, err := codec.MarshalToString(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", string(key), err)
	}
	if err := s.medium.SetItem(string(key), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", string(key), err)
	}
	return nil
}

// Raw returns the stored text for key without decoding it.
func (s *Storage) Raw(key string) (string, bool, error) {
	return s.medium.GetItem(key)
}

func (s *Storage) Remove(key string) error {
	return s.medium.RemoveItem(key)
}

func (s *Storage) Clear() error {
	return s.medium.Clear()
}

func (s *Storage) Len() (int, error) {
	return s.medium.Len()
}

// KeyAt returns the key at index, or false when index is out of range.
func (s *Storage) KeyAt(index int) (string, bool, error) {
	return s.medium.Key(index)
}
