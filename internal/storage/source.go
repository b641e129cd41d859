package storage

import (
	"context"
	"errors"
	"log/slog"
)

// Source decides which store serves a request. The live store is optional;
// the fallback holds the built-in dataset and only ever serves reads.
type Source struct {
	live     Storage
	fallback Storage
}

// NewSource wires the live store (nil when no database is configured) and
// the read-only fallback.
func NewSource(live, fallback Storage) *Source {
	return &Source{live: live, fallback: fallback}
}

// Live is the capability check for the live store. It returns ErrUnavailable
// when the process runs without a database.
func (s *Source) Live() (Storage, error) {
	if s.live == nil {
		return nil, ErrUnavailable
	}
	return s.live, nil
}

// Read runs fn against the live store and reruns it against the fallback
// when the live store is unavailable or fails. ErrNotFound from the live
// store is an answer, not a failure, and is returned as is, as is a
// cancelled request.
func Read[T any](ctx context.Context, s *Source, op string, fn func(Storage) (T, error)) (T, error) {
	live, err := s.Live()
	if err == nil {
		v, err := fn(live)
		if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			return v, err
		}
		slog.Warn("Live store failed, serving built-in dataset", "operation", op, "error", err)
	} else {
		slog.Debug("No live store, serving built-in dataset", "operation", op)
	}
	return fn(s.fallback)
}
