package lib

import "errors"

// Error classes for batch processing. The first three are fatal for a single
// video only; ErrConfig aborts the whole run before any video is touched.
var (
	ErrDimensionMismatch = errors.New("frame dimension mismatch")
	ErrDecode            = errors.New("video decode failure")
	ErrModel             = errors.New("colorizer model failure")
	ErrConfig            = errors.New("invalid configuration")
)
