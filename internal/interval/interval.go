// Package interval provides the silence interval type shared by the
// detector and the segmentation engine, plus the midpoint arithmetic
// used to choose non-destructive cut points.
package interval

import "fmt"

// Interval is a contiguous time span in an audio track, in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Valid reports whether the interval is well-formed: a non-negative
// start that does not come after the end.
func (iv Interval) Valid() bool {
	return iv.Start >= 0 && iv.Start <= iv.End
}

// Midpoint returns the center of the interval.
func (iv Interval) Midpoint() float64 {
	return (iv.Start + iv.End) / 2
}

// Duration returns the span length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%.3f-%.3f]", iv.Start, iv.End)
}

// WarnFunc receives non-fatal diagnostics. Nil suppresses them.
type WarnFunc func(msg string)

// Midpoints returns the midpoint of each interval, preserving order.
// Malformed intervals are skipped with a warning rather than aborting
// the caller: the detector output can be noisy at a track's tail and a
// single bad tuple must not lose the rest of the split points.
func Midpoints(intervals []Interval, warn WarnFunc) []float64 {
	mids := make([]float64, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Valid() {
			if warn != nil {
				warn(fmt.Sprintf("skipping invalid silence interval %s", iv))
			}
			continue
		}
		mids = append(mids, iv.Midpoint())
	}
	return mids
}
