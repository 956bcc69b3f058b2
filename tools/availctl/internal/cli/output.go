package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/md-rashed-zaman/availability/libs/availability"
)

type periodJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type periodsJSON struct {
	Timezone string       `json:"timezone"`
	Periods  []periodJSON `json:"periods"`
}

type sessionsJSON struct {
	Timezone string   `json:"timezone"`
	Interval string   `json:"interval"`
	Sessions []string `json:"sessions"`
}

// OutputFormatter writes command results as text lines or indented JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) Periods(loc *time.Location, periods []availability.Range) error {
	if f.Format == "json" {
		out := periodsJSON{Timezone: loc.String(), Periods: make([]periodJSON, 0, len(periods))}
		for _, p := range periods {
			out.Periods = append(out.Periods, periodJSON{
				Start: p.Start.Format(availability.DateTimeLayout),
				End:   p.End.Format(availability.DateTimeLayout),
			})
		}
		return f.json(out)
	}
	for _, p := range periods {
		if _, err := fmt.Fprintln(f.Writer, p.String()); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) Sessions(loc *time.Location, interval time.Duration, starts []time.Time) error {
	if f.Format == "json" {
		out := sessionsJSON{Timezone: loc.String(), Interval: interval.String(), Sessions: make([]string, 0, len(starts))}
		for _, s := range starts {
			out.Sessions = append(out.Sessions, s.Format(availability.DateTimeLayout))
		}
		return f.json(out)
	}
	for _, s := range starts {
		if _, err := fmt.Fprintln(f.Writer, s.Format(availability.DateTimeLayout)); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) json(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
