// internal/time_parser.go
// ------------------------
// Helpers for turning the time values found in rate limit headers into something the
// client can act on. Servers send X-RateLimit-Reset and Retry-After either as a delay
// in seconds, as a unix timestamp, or as a Go-style duration such as "6m0s".
//
// Functions:
// - ParseTimeStr: Convert strings like "1s", "6m0s" into milliseconds.
// - UnixToMs: Convert a UNIX timestamp in seconds to milliseconds.
// - IsInFuture: Check if a given timestamp (ms) is after now.
// - ParseResetAt: Convert any of the header forms into an absolute unix-ms reset time.
package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// unixThreshold separates delay-in-seconds values from unix timestamps. Anything
// larger than roughly one year of seconds is taken as an absolute time.
const unixThreshold = 365 * 24 * 60 * 60

// ParseTimeStr converts strings like "1s", "6m0s" into ms.
func ParseTimeStr(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if strings.HasSuffix(s, "s") && !strings.Contains(s, "m") {
		val := strings.TrimSuffix(s, "s")
		sec, err := strconv.Atoi(val)
		if err == nil {
			return int64(sec) * 1000
		}
	}

	var minutes, seconds int
	n, err := fmt.Sscanf(s, "%dm%ds", &minutes, &seconds)
	if n == 2 && err == nil {
		return int64(minutes)*60_000 + int64(seconds)*1_000
	}

	return 0
}

// UnixToMs converts a UNIX timestamp in seconds to milliseconds.
func UnixToMs(timestamp int64) int64 {
	return timestamp * 1000
}

// IsInFuture checks if a timestamp (in ms) is after now.
func IsInFuture(ms int64, now time.Time) bool {
	return ms > now.UnixMilli()
}

// ParseResetAt interprets a reset header value relative to now and returns the reset
// moment in unix milliseconds. ok is false when the value is not understood.
func ParseResetAt(value string, now time.Time) (resetAt int64, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		if n > unixThreshold {
			return UnixToMs(n), true
		}
		return now.UnixMilli() + n*1000, true
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
		return now.UnixMilli() + int64(f*1000), true
	}

	if ms := ParseTimeStr(value); ms > 0 {
		return now.UnixMilli() + ms, true
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		return t.UnixMilli(), true
	}
	return 0, false
}
