package availability

import (
	"time"
)

var day = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

func rng(start, end string) Range {
	return Range{Start: at(start), End: at(end)}
}

func pair(start, end string) [2]string {
	return [2]string{"2019-01-01 " + start + ":00", "2019-01-01 " + end + ":00"}
}

func texts(rs []Range) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String())
	}
	return out
}

func clocks(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("15:04"))
	}
	return out
}
