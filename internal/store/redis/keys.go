package redis

import (
	"strconv"
	"time"
)

// KeyPrefixRateLimit is the prefix for per-client rate limit counters.
const KeyPrefixRateLimit = "singme:ratelimit:"

// RateLimitKey returns the counter key for client during the window starting at windowStart.
func RateLimitKey(client string, windowStart time.Time) string {
	return KeyPrefixRateLimit + client + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}
