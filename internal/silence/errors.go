package silence

import "errors"

// ErrNoSilence indicates the detector ran successfully but reported no
// silence markers. A sentinel rather than an empty result, so callers can
// tell "found nothing" apart from "nothing to find".
var ErrNoSilence = errors.New("no silence detected")
