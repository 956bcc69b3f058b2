package availability

import "time"

// Parse builds an Availability from [start, end] literal pairs in DateTimeLayout, read as UTC.
func Parse(available, unavailable [][2]string) (*Availability, error) {
	return ParseInLocation(available, unavailable, time.UTC)
}

// ParseInLocation is Parse with literals interpreted in loc. Nothing is returned unless every
// literal parses and every range is well formed.
func ParseInLocation(available, unavailable [][2]string, loc *time.Location) (*Availability, error) {
	avail, err := ParseRanges(available, loc)
	if err != nil {
		return nil, err
	}
	unavail, err := ParseRanges(unavailable, loc)
	if err != nil {
		return nil, err
	}
	return New(avail, unavail)
}

// ParseRanges converts literal pairs to ranges without merging them.
func ParseRanges(pairs [][2]string, loc *time.Location) ([]Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Range, 0, len(pairs))
	for _, p := range pairs {
		start, err := parseInstant(p[0], loc)
		if err != nil {
			return nil, err
		}
		end, err := parseInstant(p[1], loc)
		if err != nil {
			return nil, err
		}
		r, err := NewRange(start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseInstant(v string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, v, loc)
	if err != nil {
		return time.Time{}, &ParseError{Value: v, Err: err}
	}
	return t, nil
}
