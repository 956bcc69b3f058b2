// Package availability computes free time from available ranges minus booked ranges and
// slices it into fixed-length sessions.
//
// An Availability is immutable once built. Periods and Sessions recompute on every call.
package availability

import (
	"iter"
	"time"
)

type Availability struct {
	available   []Range
	unavailable []Range
}

// New validates both lists and merges each of them independently.
func New(available, unavailable []Range) (*Availability, error) {
	for _, list := range [][]Range{available, unavailable} {
		for _, r := range list {
			if r.Start.After(r.End) {
				return nil, &InvalidRangeError{Start: r.Start, End: r.End}
			}
		}
	}
	return &Availability{
		available:   Merge(available),
		unavailable: Merge(unavailable),
	}, nil
}

// Available returns a copy of the merged available ranges.
func (a *Availability) Available() []Range {
	return append([]Range(nil), a.available...)
}

// Unavailable returns a copy of the merged unavailable ranges.
func (a *Availability) Unavailable() []Range {
	return append([]Range(nil), a.unavailable...)
}

// Periods returns the free ranges left after every unavailable range is removed from every
// available range. Available ranges are processed in merged order; split fragments are
// emitted left before right.
func (a *Availability) Periods() []Range {
	var out []Range
	for _, r := range a.available {
		out = carve(out, r, a.unavailable)
	}
	return out
}

type fragment struct {
	r    Range
	next int
}

// carve appends to out whatever survives of r. After a split each fragment only meets the
// unavailable ranges that follow the one that split it.
func carve(out []Range, r Range, blocks []Range) []Range {
	stack := []fragment{{r: r}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur, alive := f.r, true
	scan:
		for i := f.next; i < len(blocks); i++ {
			rem := Subtract(cur, blocks[i])
			switch rem.Outcome {
			case Removed:
				alive = false
				break scan
			case Split:
				// Right is pushed first so the left fragment is finished before it.
				stack = append(stack,
					fragment{r: rem.Ranges[1], next: i + 1},
					fragment{r: rem.Ranges[0], next: i + 1},
				)
				alive = false
				break scan
			default:
				cur = rem.Ranges[0]
			}
		}
		if alive {
			out = append(out, cur)
		}
	}
	return out
}

// Sessions returns every session start of length interval that fits inside a free period.
// A non-positive interval yields nil.
func (a *Availability) Sessions(interval time.Duration) []time.Time {
	var out []time.Time
	for t := range a.SessionSeq(interval) {
		out = append(out, t)
	}
	return out
}

// SessionsFor is Sessions with the interval given as text such as "15 minutes".
func (a *Availability) SessionsFor(text string) ([]time.Time, error) {
	d, err := ParseInterval(text)
	if err != nil {
		return nil, err
	}
	return a.Sessions(d), nil
}

// SessionSeq lazily yields the same starts as Sessions.
func (a *Availability) SessionSeq(interval time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if interval <= 0 {
			return
		}
		for _, p := range a.Periods() {
			for t := p.Start; p.Contains(t.Add(interval)); t = t.Add(interval) {
				if !yield(t) {
					return
				}
			}
		}
	}
}
