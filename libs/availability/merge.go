package availability

// Merge collapses ranges into the minimal set in which no two entries inclusively overlap.
// Output keeps the order in which each overlap group was first seen. The input is not modified.
func Merge(ranges []Range) []Range {
	merged := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		i := indexInclusiveOverlap(merged, r)
		if i < 0 {
			merged = append(merged, r)
			continue
		}
		widened := merged[i].union(r)
		if widened.Equal(merged[i]) {
			continue
		}
		merged[i] = widened
		// The widened entry may now bridge two groups that were separate.
		merged = settle(merged)
	}
	return merged
}

// settle re-folds rs until a pass merges nothing.
func settle(rs []Range) []Range {
	for {
		next := fold(rs)
		if len(next) == len(rs) {
			return next
		}
		rs = next
	}
}

func fold(rs []Range) []Range {
	out := make([]Range, 0, len(rs))
	for _, r := range rs {
		if i := indexInclusiveOverlap(out, r); i >= 0 {
			out[i] = out[i].union(r)
			continue
		}
		out = append(out, r)
	}
	return out
}

func indexInclusiveOverlap(rs []Range, r Range) int {
	for i, m := range rs {
		if m.InclusiveOverlaps(r) {
			return i
		}
	}
	return -1
}
