package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/logger"
)

// fakeFetcher returns canned results and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	events []WasteEvent
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, city, street string) ([]WasteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeFetcher) set(events []WasteEvent, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
	f.err = err
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheUpdateThrottles(t *testing.T) {
	f := &fakeFetcher{events: []WasteEvent{{ID: "1", Date: day(2024, 3, 5), Black: true}}}
	clk := &clock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, berlin)}
	c := NewCache(f, "city", "street", WithClock(clk.Now), WithLocation(berlin))

	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("first Update() failed: %v", err)
	}
	clk.Advance(time.Hour)
	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("second Update() failed: %v", err)
	}

	if f.count() != 1 {
		t.Errorf("two updates within the interval made %d requests, want 1", f.count())
	}

	clk.Advance(DefaultThrottle)
	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("third Update() failed: %v", err)
	}
	if f.count() != 2 {
		t.Errorf("update after the interval made %d requests in total, want 2", f.count())
	}
}

func TestCacheForceUpdateBypassesThrottle(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, "city", "street")

	_ = c.Update(context.Background())
	_ = c.Update(context.Background())
	if err := c.ForceUpdate(context.Background()); err != nil {
		t.Fatalf("ForceUpdate() failed: %v", err)
	}

	if f.count() != 2 {
		t.Errorf("fetch count = %d, want 2", f.count())
	}
}

func TestCacheUpdateSortsEvents(t *testing.T) {
	f := &fakeFetcher{events: []WasteEvent{
		{ID: "c", Date: day(2024, 3, 20)},
		{ID: "a", Date: day(2024, 3, 1)},
		{ID: "b", Date: day(2024, 3, 10)},
	}}
	c := NewCache(f, "city", "street")

	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	events := c.Events()
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			t.Fatalf("events not sorted: %v before %v", events[i-1].Date, events[i].Date)
		}
	}
	if f.events[0].ID != "c" {
		t.Error("cache should not reorder the fetcher's slice")
	}
}

func TestCacheUpdateFailureKeepsPreviousEvents(t *testing.T) {
	log := logger.NewMockLogger()
	f := &fakeFetcher{events: []WasteEvent{{ID: "1", Date: day(2024, 3, 5), Black: true}}}
	clk := &clock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, berlin)}
	c := NewCache(f, "city", "street", WithClock(clk.Now), WithLogger(log), WithThrottle(time.Hour))

	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	firstFetch := c.LastFetch()

	clk.Advance(2 * time.Hour)
	f.set(nil, ErrTransport)
	err := c.Update(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Update() error = %v, want ErrTransport", err)
	}

	if got := c.Events(); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("cached events after failure = %+v", got)
	}
	if !c.LastFetch().Equal(firstFetch) {
		t.Error("failed fetch must not move the last fetch time")
	}
	if len(log.Errors()) != 1 {
		t.Errorf("expected one logged error, got %v", log.Errors())
	}

	// A failed attempt does not count against the throttle.
	f.set([]WasteEvent{{ID: "2", Date: day(2024, 3, 6)}}, nil)
	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if f.count() != 3 {
		t.Errorf("fetch count = %d, want 3", f.count())
	}
	if got := c.Events(); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("events after retry = %+v", got)
	}
}

func TestCacheConcurrentUpdatesFetchOnce(t *testing.T) {
	f := &fakeFetcher{events: []WasteEvent{{ID: "1", Date: day(2024, 3, 5)}}}
	c := NewCache(f, "city", "street")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Update(context.Background())
			_ = c.Events()
		}()
	}
	wg.Wait()

	if f.count() != 1 {
		t.Errorf("concurrent updates made %d requests, want 1", f.count())
	}
}

func TestCacheNowUsesLocation(t *testing.T) {
	utc := time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC)
	c := NewCache(&fakeFetcher{}, "city", "street",
		WithClock(func() time.Time { return utc }), WithLocation(berlin))

	now := c.Now()
	if now.Location() != berlin {
		t.Errorf("Now() location = %v, want Europe/Berlin", now.Location())
	}
	if now.Day() != 5 {
		t.Errorf("23:30 UTC is already the 5th in Berlin, got day %d", now.Day())
	}
}

func TestCacheEndToEndExample(t *testing.T) {
	f := &fakeFetcher{events: []WasteEvent{
		{ID: "a", Date: day(2024, 3, 5), Black: true},
		{ID: "b", Date: day(2024, 3, 12), Black: true},
	}}
	c := NewCache(f, "city", "street",
		WithClock(func() time.Time { return time.Date(2024, 3, 6, 10, 0, 0, 0, berlin) }),
		WithLocation(berlin))

	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	next, ok := NextEvent(c.Events(), Black, c.Now())
	if !ok || !next.Date.Equal(day(2024, 3, 12)) {
		t.Errorf("next black event = %v (ok=%v), want 2024-03-12", next.Date, ok)
	}
}
