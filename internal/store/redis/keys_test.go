package redis

import (
	"testing"
	"time"
)

func TestRateLimitKey(t *testing.T) {
	start := time.Unix(1700000040, 0)
	got := RateLimitKey("203.0.113.7", start)
	want := "singme:ratelimit:203.0.113.7:1700000040"
	if got != want {
		t.Errorf("RateLimitKey() = %q, want %q", got, want)
	}
}

func TestRetryAfter(t *testing.T) {
	end := time.Unix(120, 0)
	tests := []struct {
		now  time.Time
		want int
	}{
		{now: time.Unix(60, 0), want: 60},
		{now: time.Unix(119, 500_000_000), want: 1},
		{now: time.Unix(120, 0), want: 1},
	}
	for _, tt := range tests {
		if got := retryAfter(end, tt.now); got != tt.want {
			t.Errorf("retryAfter(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

func TestNewRateLimiterDefaults(t *testing.T) {
	l := NewRateLimiter(nil, 0, 0)
	if l.limit != 1 || l.window != time.Minute {
		t.Errorf("NewRateLimiter() = limit %d window %v, want 1 and 1m", l.limit, l.window)
	}
}
