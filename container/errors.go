package container

import "github.com/pkg/errors"

// Error kinds the container codec distinguishes. Parse failures are always
// wrapped with one of these as the root cause so callers can test with
// errors.Is / errors.Cause.
var (
	// ErrTruncated means the blob ended before a declared field could be read.
	ErrTruncated = errors.New("d88: truncated image")

	// ErrMalformedImage means a declared size did not match the data that
	// followed it (a disk region running past the blob). A sector payload
	// shorter than its declared size is reported as ErrTruncated.
	ErrMalformedImage = errors.New("d88: malformed image")
)
