package calc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/availability/libs/availability"
	otelx "github.com/md-rashed-zaman/availability/libs/otel"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidRequest wraps every error caused by the caller's input.
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrTooManySessions = errors.New("too many sessions")
)

// DefaultMaxSessions caps a sessions response when Options.MaxSessions is not positive.
const DefaultMaxSessions = 10000

type Options struct {
	DefaultTimezone string
	CacheTTL        time.Duration
	MaxSessions     int
}

// Calculator runs availability computations for every transport. It keeps no state beyond
// its cache client and is safe for concurrent use.
type Calculator struct {
	logger      *slog.Logger
	cache       cache.Cache
	ttl         time.Duration
	defaultZone string
	maxSessions int
	tracer      trace.Tracer
}

func New(logger *slog.Logger, c cache.Cache, opts Options) *Calculator {
	if c == nil {
		c = cache.Nop{}
	}
	zone := strings.TrimSpace(opts.DefaultTimezone)
	if zone == "" {
		zone = "UTC"
	}
	maxSessions := opts.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Calculator{
		logger:      logger,
		cache:       c,
		ttl:         opts.CacheTTL,
		defaultZone: zone,
		maxSessions: maxSessions,
		tracer:      otelx.Tracer("availability"),
	}
}

func (c *Calculator) Periods(ctx context.Context, req Request) (resp PeriodsResponse, err error) {
	ctx, span := c.tracer.Start(ctx, "availability.periods", trace.WithAttributes(
		attribute.Int("availability.available_count", len(req.Available)),
		attribute.Int("availability.unavailable_count", len(req.Unavailable)),
	))
	defer func() { otelx.EndSpan(span, err) }()

	req.Interval = ""
	req.Timezone = c.zone(req)
	key := cacheKey("periods", req)
	if c.lookup(ctx, key, &resp) {
		span.SetAttributes(attribute.Bool("availability.cache_hit", true))
		return resp, nil
	}

	a, err := c.build(req)
	if err != nil {
		return PeriodsResponse{}, err
	}
	periods := a.Periods()
	var free time.Duration
	for _, p := range periods {
		free += p.Duration()
	}
	span.SetAttributes(
		attribute.Int("availability.period_count", len(periods)),
		attribute.Int64("availability.free_seconds", int64(free/time.Second)),
	)

	resp = PeriodsResponse{Timezone: req.Timezone, Periods: slotsFromRanges(periods)}
	c.store(ctx, key, resp)
	return resp, nil
}

func (c *Calculator) Sessions(ctx context.Context, req Request) (resp SessionsResponse, err error) {
	ctx, span := c.tracer.Start(ctx, "availability.sessions", trace.WithAttributes(
		attribute.Int("availability.available_count", len(req.Available)),
		attribute.Int("availability.unavailable_count", len(req.Unavailable)),
		attribute.String("availability.interval", req.Interval),
	))
	defer func() { otelx.EndSpan(span, err) }()

	interval, err := availability.ParseInterval(req.Interval)
	if err != nil {
		return SessionsResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	req.Timezone = c.zone(req)
	key := cacheKey("sessions", req)
	if c.lookup(ctx, key, &resp) {
		span.SetAttributes(attribute.Bool("availability.cache_hit", true))
		return resp, nil
	}

	a, err := c.build(req)
	if err != nil {
		return SessionsResponse{}, err
	}
	starts, err := c.sessions(a, interval)
	if err != nil {
		return SessionsResponse{}, err
	}
	span.SetAttributes(attribute.Int("availability.session_count", len(starts)))

	resp = SessionsResponse{
		Timezone:        req.Timezone,
		IntervalSeconds: int64(interval / time.Second),
		Sessions:        slotsFromStarts(starts, interval),
	}
	c.store(ctx, key, resp)
	return resp, nil
}

// sessions collects at most maxSessions starts and fails once the free time holds more.
func (c *Calculator) sessions(a *availability.Availability, interval time.Duration) ([]time.Time, error) {
	var starts []time.Time
	for t := range a.SessionSeq(interval) {
		if len(starts) == c.maxSessions {
			return nil, fmt.Errorf("%w: %w: more than %d at interval %s", ErrInvalidRequest, ErrTooManySessions, c.maxSessions, interval)
		}
		starts = append(starts, t)
	}
	return starts, nil
}

func (c *Calculator) zone(req Request) string {
	if z := strings.TrimSpace(req.Timezone); z != "" {
		return z
	}
	return c.defaultZone
}

func (c *Calculator) build(req Request) (*availability.Availability, error) {
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidRequest, ErrUnknownTimezone, req.Timezone)
	}
	a, err := availability.ParseInLocation(req.Available, req.Unavailable, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return a, nil
}

// lookup reports a cache hit. Cache failures are logged and treated as misses.
func (c *Calculator) lookup(ctx context.Context, key string, dst any) bool {
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "err", err, "key", key)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.logger.Warn("cache entry unreadable", "err", err, "key", key)
		return false
	}
	return true
}

func (c *Calculator) store(ctx context.Context, key string, v any) {
	if c.ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache encode failed", "err", err)
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "err", err, "key", key)
	}
}

func cacheKey(kind string, req Request) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return kind + ":" + hex.EncodeToString(sum[:])
}
