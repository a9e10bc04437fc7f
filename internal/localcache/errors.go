package localcache

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageFull is returned by a KV when a write exceeds its capacity.
	ErrStorageFull = errors.New("local storage is full")
	// ErrUnavailable is returned when the cache has no backing storage.
	ErrUnavailable = errors.New("local storage unavailable")
)

// CacheWriteError reports a write that failed even after the recovery attempt.
type CacheWriteError struct {
	Retried bool
	Err     error
}

func (e *CacheWriteError) Error() string {
	if e.Retried {
		return fmt.Sprintf("writing cache after clearing it: %v", e.Err)
	}

	return fmt.Sprintf("writing cache: %v", e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}
