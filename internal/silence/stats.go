package silence

import (
	"fmt"

	"github.com/alnah/go-voiceset/internal/interval"
)

// Report summarizes the silences found in one track. It helps pick a
// sensible time threshold before splitting.
type Report struct {
	Count    int
	Shortest float64 // seconds
	Longest  float64 // seconds
	Mean     float64 // seconds
}

func (r Report) String() string {
	if r.Count == 0 {
		return "no silences"
	}
	return fmt.Sprintf("%d silences: shortest %.2fs, longest %.2fs, mean %.2fs",
		r.Count, r.Shortest, r.Longest, r.Mean)
}

// Stats computes summary statistics over detected silence intervals.
// Invalid intervals are ignored.
func Stats(intervals []interval.Interval) Report {
	var r Report
	var total float64

	for _, iv := range intervals {
		if !iv.Valid() {
			continue
		}
		d := iv.Duration()
		if r.Count == 0 || d < r.Shortest {
			r.Shortest = d
		}
		if d > r.Longest {
			r.Longest = d
		}
		total += d
		r.Count++
	}

	if r.Count > 0 {
		r.Mean = total / float64(r.Count)
	}
	return r
}
