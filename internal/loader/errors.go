package loader

import (
	"errors"
	"fmt"
)

var ErrNoRemote = errors.New("remote store not configured")

// RemoteFetchError reports the page that failed. Pages before it are discarded.
type RemoteFetchError struct {
	Page int
	Err  error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetching page %d: %v", e.Page, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}
