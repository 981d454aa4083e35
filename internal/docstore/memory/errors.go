package memory

import "errors"

// ErrClosed is returned by every call on a closed backend.
var ErrClosed = errors.New("memory backend is closed")
