package segment

import "errors"

// ErrSliceFailed indicates FFmpeg failed to materialize or export an
// audio slice. Fatal for the affected track.
var ErrSliceFailed = errors.New("audio slice extraction failed")

// ErrInvalidThreshold indicates the configured silence duration threshold
// is not a positive number.
var ErrInvalidThreshold = errors.New("time threshold must be positive")
