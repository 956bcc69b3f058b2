package availability

import "time"

// DateTimeLayout is the literal format accepted by Parse and produced by Range.String.
const DateTimeLayout = "2006-01-02 15:04:05"

// Range is a closed interval [Start, End] of instants.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange returns a Range, rejecting start > end.
func NewRange(start, end time.Time) (Range, error) {
	if start.After(end) {
		return Range{}, &InvalidRangeError{Start: start, End: end}
	}
	return Range{Start: start, End: end}, nil
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Contains reports whether t lies within [Start, End].
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps is plain interval intersection. Ranges that only touch do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.End.After(o.Start) && o.End.After(r.Start)
}

// InclusiveOverlaps also counts shared endpoints, so touching ranges are contiguous.
func (r Range) InclusiveOverlaps(o Range) bool {
	return r.Overlaps(o) ||
		r.Start.Equal(o.Start) ||
		r.Start.Equal(o.End) ||
		o.Start.Equal(r.End) ||
		o.End.Equal(r.End)
}

func (r Range) union(o Range) Range {
	out := r
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}

func (r Range) String() string {
	return r.Start.Format(DateTimeLayout) + " - " + r.End.Format(DateTimeLayout)
}
