package cache

import (
	"context"
	"testing"
	"time"
)

func TestPruneScheduler_EmptySchedule(t *testing.T) {
	c := New(Config{Enabled: true, TTL: time.Hour, MaxSize: 10})
	s := NewPruneScheduler(c, "")

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() with empty schedule returned error: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler running with empty schedule")
	}
}

func TestPruneScheduler_InvalidSchedule(t *testing.T) {
	c := New(Config{Enabled: true, TTL: time.Hour, MaxSize: 10})
	s := NewPruneScheduler(c, "not a cron expression")

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() with invalid schedule did not return error")
	}
}

func TestPruneScheduler_StartStop(t *testing.T) {
	c := New(Config{Enabled: true, TTL: time.Hour, MaxSize: 10})
	s := NewPruneScheduler(c, "*/15 * * * *")

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler not running after Start()")
	}
	if s.NextRun() == nil {
		t.Error("NextRun() = nil for a running scheduler")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop()")
	}

	// Stop again is harmless
	s.Stop()
}

func TestPruneScheduler_ContextCancel(t *testing.T) {
	c := New(Config{Enabled: true, TTL: time.Hour, MaxSize: 10})
	s := NewPruneScheduler(c, "0 * * * *")

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	cancel()

	// Stop runs asynchronously off the context; poll briefly
	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancellation")
	}
}

func TestPruneScheduler_RunPrune(t *testing.T) {
	c, clock := newTestCache(Config{Enabled: true, TTL: 10 * time.Millisecond, MaxSize: 10})
	s := NewPruneScheduler(c, "*/15 * * * *")

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(time.Second)

	s.runPrune()

	if c.Size() != 0 {
		t.Errorf("Size() after prune cycle = %d, want 0", c.Size())
	}
}
