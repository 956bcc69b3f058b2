package availability

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var intervalUnits = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// ParseInterval accepts "15 minutes", "1 hour 30 minutes", "90 seconds" or any
// time.ParseDuration string. The result must be positive.
func ParseInterval(text string) (time.Duration, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidInterval)
	}
	if d, err := time.ParseDuration(text); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidInterval, text)
		}
		return d, nil
	}

	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
	}
	var total time.Duration
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.Atoi(fields[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: bad amount %q", ErrInvalidInterval, fields[i])
		}
		unit, ok := intervalUnits[strings.TrimSuffix(fields[i+1], "s")]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidInterval, fields[i+1])
		}
		if int64(n) > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidInterval, text)
		}
		step := time.Duration(n) * unit
		if total > math.MaxInt64-step {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidInterval, text)
		}
		total += step
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidInterval, text)
	}
	return total, nil
}
