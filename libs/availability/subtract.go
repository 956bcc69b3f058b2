package availability

// Outcome classifies what subtracting one range from another left behind.
type Outcome int

const (
	Unchanged Outcome = iota
	Trimmed
	Split
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Trimmed:
		return "trimmed"
	case Split:
		return "split"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Remainder is the result of Subtract. Ranges holds one entry for Unchanged and Trimmed,
// two (left then right) for Split and none for Removed.
type Remainder struct {
	Outcome Outcome
	Ranges  []Range
}

// Subtract removes unavail from avail.
//
// The trim rules run in sequence against one working copy: the trailing trim reads the
// result of the leading trim, and the eclipse check reads both. Reordering them changes
// the result for asymmetric overlaps.
func Subtract(avail, unavail Range) Remainder {
	if !avail.Overlaps(unavail) {
		return Remainder{Outcome: Unchanged, Ranges: []Range{avail}}
	}

	if avail.Start.Before(unavail.Start) && avail.End.After(unavail.End) {
		return Remainder{Outcome: Split, Ranges: []Range{
			{Start: avail.Start, End: unavail.Start},
			{Start: unavail.End, End: avail.End},
		}}
	}

	w := avail
	if !w.Start.Before(unavail.Start) && w.End.After(unavail.End) {
		w.Start = unavail.End
	}
	if w.End.After(unavail.Start) && !w.End.After(unavail.End) {
		w.End = unavail.Start
	}
	if !w.Start.Before(unavail.Start) && !w.End.After(unavail.End) {
		return Remainder{Outcome: Removed}
	}
	return Remainder{Outcome: Trimmed, Ranges: []Range{w}}
}
