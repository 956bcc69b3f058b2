package calc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/availability/libs/availability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	entries map[string][]byte
	getErr  error
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.entries[key]
	return b, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	m.sets++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var readmeRequest = Request{
	Available: [][2]string{
		{"2019-01-01 09:00:00", "2019-01-01 10:00:00"},
		{"2019-01-01 10:15:00", "2019-01-01 11:00:00"},
		{"2019-01-01 11:00:00", "2019-01-01 12:00:00"},
	},
	Unavailable: [][2]string{
		{"2019-01-01 10:45:00", "2019-01-01 11:30:00"},
		{"2019-01-01 11:50:00", "2019-01-01 11:55:00"},
	},
	Interval: "15 minutes",
}

func TestPeriods(t *testing.T) {
	c := New(discardLogger(), nil, Options{})
	resp, err := c.Periods(context.Background(), readmeRequest)
	require.NoError(t, err)

	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, []Slot{
		{StartTime: "2019-01-01T09:00:00Z", EndTime: "2019-01-01T10:00:00Z"},
		{StartTime: "2019-01-01T10:15:00Z", EndTime: "2019-01-01T10:45:00Z"},
		{StartTime: "2019-01-01T11:30:00Z", EndTime: "2019-01-01T11:50:00Z"},
		{StartTime: "2019-01-01T11:55:00Z", EndTime: "2019-01-01T12:00:00Z"},
	}, resp.Periods)
}

func TestSessions(t *testing.T) {
	c := New(discardLogger(), nil, Options{DefaultTimezone: "Europe/Vienna"})
	resp, err := c.Sessions(context.Background(), readmeRequest)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Vienna", resp.Timezone)
	assert.Equal(t, int64(900), resp.IntervalSeconds)
	require.Len(t, resp.Sessions, 7)
	assert.Equal(t, Slot{StartTime: "2019-01-01T09:00:00+01:00", EndTime: "2019-01-01T09:15:00+01:00"}, resp.Sessions[0])
	assert.Equal(t, "2019-01-01T11:30:00+01:00", resp.Sessions[6].StartTime)
}

func TestInvalidInput(t *testing.T) {
	c := New(discardLogger(), nil, Options{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		call func(Request) error
		is   error
	}{
		{
			name: "malformed literal",
			req:  Request{Available: [][2]string{{"2019-01-01", "2019-01-01 10:00:00"}}},
			call: func(r Request) error { _, err := c.Periods(ctx, r); return err },
		},
		{
			name: "inverted range",
			req:  Request{Available: [][2]string{{"2019-01-01 11:00:00", "2019-01-01 10:00:00"}}},
			call: func(r Request) error { _, err := c.Periods(ctx, r); return err },
			is:   availability.ErrInvalidRange,
		},
		{
			name: "unknown timezone",
			req:  Request{Timezone: "Mars/Olympus"},
			call: func(r Request) error { _, err := c.Periods(ctx, r); return err },
			is:   ErrUnknownTimezone,
		},
		{
			name: "bad interval",
			req:  Request{Interval: "soon"},
			call: func(r Request) error { _, err := c.Sessions(ctx, r); return err },
			is:   availability.ErrInvalidInterval,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call(tc.req)
			require.ErrorIs(t, err, ErrInvalidRequest)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	mc := newMemCache()
	c := New(discardLogger(), mc, Options{CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := c.Sessions(ctx, readmeRequest)
	require.NoError(t, err)
	assert.Equal(t, 1, mc.sets)

	second, err := c.Sessions(ctx, readmeRequest)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mc.sets, "hit must not rewrite")
}

func TestCacheHitIsServed(t *testing.T) {
	mc := newMemCache()
	c := New(discardLogger(), mc, Options{CacheTTL: time.Minute})

	req := readmeRequest
	req.Timezone = "UTC"
	req.Interval = ""
	canned, err := json.Marshal(PeriodsResponse{Timezone: "UTC", Periods: []Slot{{StartTime: "cached", EndTime: "cached"}}})
	require.NoError(t, err)
	mc.entries[cacheKey("periods", req)] = canned

	resp, err := c.Periods(context.Background(), readmeRequest)
	require.NoError(t, err)
	assert.Equal(t, "cached", resp.Periods[0].StartTime)
}

func TestCacheErrorsAreBypassed(t *testing.T) {
	mc := newMemCache()
	mc.getErr = errors.New("redis: connection refused")
	c := New(discardLogger(), mc, Options{CacheTTL: time.Minute})

	resp, err := c.Periods(context.Background(), readmeRequest)
	require.NoError(t, err)
	assert.Len(t, resp.Periods, 4)
}

func TestNoTTLSkipsStore(t *testing.T) {
	mc := newMemCache()
	c := New(discardLogger(), mc, Options{})
	_, err := c.Periods(context.Background(), readmeRequest)
	require.NoError(t, err)
	assert.Zero(t, mc.sets)
}

func TestSessionsCap(t *testing.T) {
	hour := Request{
		Available: [][2]string{{"2019-01-01 11:00:00", "2019-01-01 12:00:00"}},
		Interval:  "15 minutes",
	}

	c := New(discardLogger(), nil, Options{MaxSessions: 4})
	resp, err := c.Sessions(context.Background(), hour)
	require.NoError(t, err)
	assert.Len(t, resp.Sessions, 4)

	c = New(discardLogger(), nil, Options{MaxSessions: 3})
	_, err = c.Sessions(context.Background(), hour)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestSessionsCapStopsLongRanges(t *testing.T) {
	mc := newMemCache()
	c := New(discardLogger(), mc, Options{CacheTTL: time.Minute})
	_, err := c.Sessions(context.Background(), Request{
		Available: [][2]string{{"2019-01-01 00:00:00", "2019-03-01 00:00:00"}},
		Interval:  "1 second",
	})
	require.ErrorIs(t, err, ErrTooManySessions)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, mc.sets)
}

func TestSessionsRejectsOverflowingInterval(t *testing.T) {
	c := New(discardLogger(), nil, Options{})
	_, err := c.Sessions(context.Background(), Request{
		Available: [][2]string{{"2019-01-01 11:00:00", "2019-01-01 12:00:00"}},
		Interval:  "20211507185753197 seconds",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, availability.ErrInvalidInterval)
}
