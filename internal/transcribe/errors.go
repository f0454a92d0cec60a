package transcribe

import "errors"

// ErrAPIKeyMissing indicates the OPENAI_API_KEY environment variable is
// not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrNoAudioFiles indicates a batch folder holds nothing to transcribe.
var ErrNoAudioFiles = errors.New("no audio files found")
