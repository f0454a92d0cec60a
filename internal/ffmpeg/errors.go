package ffmpeg

import "errors"

// ErrNotFound indicates the FFmpeg binary is not installed or not on PATH.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrDecodeFailed indicates FFmpeg could not decode an input file.
// This is fatal for the affected track.
var ErrDecodeFailed = errors.New("audio decode failed")
