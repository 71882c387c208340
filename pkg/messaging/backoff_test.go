package messaging

import (
	"testing"
	"time"
)

// TestBackoff_Doubling verifies delay = base * 2^attempt below the cap.
func TestBackoff_Doubling(t *testing.T) {
	b := DefaultBackoff()
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for attempt, w := range want {
		if got := b.Delay(attempt); got != w {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, w)
		}
	}
}

// TestBackoff_Cap verifies the delay never exceeds the cap, even for attempt
// counts large enough to overflow a naive shift.
func TestBackoff_Cap(t *testing.T) {
	b := DefaultBackoff()
	for _, attempt := range []int{5, 6, 10, 31, 62, 63, 100, 1 << 20} {
		if got := b.Delay(attempt); got != 30*time.Second {
			t.Errorf("attempt %d: got %v, want cap %v", attempt, got, 30*time.Second)
		}
	}
}

// TestBackoff_NegativeAttempt treats negative attempts as the first attempt.
func TestBackoff_NegativeAttempt(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Cap: time.Second}
	if got := b.Delay(-3); got != 100*time.Millisecond {
		t.Errorf("got %v, want %v", got, 100*time.Millisecond)
	}
}

// TestBackoff_CustomPolicy verifies the bound min(base*2^n, cap) for a
// non-default policy.
func TestBackoff_CustomPolicy(t *testing.T) {
	b := Backoff{Base: 50 * time.Millisecond, Cap: 300 * time.Millisecond}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 50 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond}, // 400ms capped
		{8, 300 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Errorf("attempt %d: got %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
