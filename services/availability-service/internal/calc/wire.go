package calc

import (
	"time"

	"github.com/md-rashed-zaman/availability/libs/availability"
)

// Request is the transport-neutral input shared by HTTP, gRPC and Kafka.
// Ranges are [start, end] literals in availability.DateTimeLayout.
type Request struct {
	Available   [][2]string `json:"available"`
	Unavailable [][2]string `json:"unavailable,omitempty"`
	Timezone    string      `json:"timezone,omitempty"`
	Interval    string      `json:"interval,omitempty"`
}

type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type PeriodsResponse struct {
	Timezone string `json:"timezone"`
	Periods  []Slot `json:"periods"`
}

type SessionsResponse struct {
	Timezone        string `json:"timezone"`
	IntervalSeconds int64  `json:"interval_seconds"`
	Sessions        []Slot `json:"sessions"`
}

func slotsFromRanges(rs []availability.Range) []Slot {
	out := make([]Slot, 0, len(rs))
	for _, r := range rs {
		out = append(out, Slot{
			StartTime: r.Start.Format(time.RFC3339),
			EndTime:   r.End.Format(time.RFC3339),
		})
	}
	return out
}

func slotsFromStarts(starts []time.Time, d time.Duration) []Slot {
	out := make([]Slot, 0, len(starts))
	for _, s := range starts {
		out = append(out, Slot{
			StartTime: s.Format(time.RFC3339),
			EndTime:   s.Add(d).Format(time.RFC3339),
		})
	}
	return out
}
