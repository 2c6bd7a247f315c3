package timeutil

import (
	"testing"
	"time"
)

func TestMockClock_AfterFiresOnAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	ch := clock.After(1500 * time.Millisecond)
	if clock.Waiters() != 1 {
		t.Fatalf("got %d waiters, want 1", clock.Waiters())
	}

	clock.Advance(time.Second)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	clock.Advance(500 * time.Millisecond)
	select {
	case got := <-ch:
		if !got.Equal(start.Add(1500 * time.Millisecond)) {
			t.Errorf("got %v, want %v", got, start.Add(1500*time.Millisecond))
		}
	default:
		t.Fatal("did not fire at deadline")
	}

	if clock.Waiters() != 0 {
		t.Errorf("got %d waiters, want 0", clock.Waiters())
	}
}

func TestMockClock_AfterNonPositive(t *testing.T) {
	clock := NewMockClock(time.Now())

	select {
	case <-clock.After(0):
	default:
		t.Fatal("zero duration should fire immediately")
	}
}
