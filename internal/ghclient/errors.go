package ghclient

import (
	"errors"
	"fmt"
)

// UpstreamFetchError reports a failed or malformed response from GitHub. It is
// fatal: no partial report is produced.
type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// wrapFetch wraps err as an UpstreamFetchError unless it already is one.
func wrapFetch(op string, err error) error {
	if err == nil {
		return nil
	}
	var ufe *UpstreamFetchError
	if errors.As(err, &ufe) {
		return err
	}
	return &UpstreamFetchError{Op: op, Err: err}
}
