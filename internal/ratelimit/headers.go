package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Notion rate limit response headers.
const (
	HeaderLimit     = "x-ratelimit-limit"
	HeaderRemaining = "x-ratelimit-remaining"
	HeaderReset     = "x-ratelimit-reset"
)

// ExtractHeaders pulls rate limit knowledge out of a response. The reset
// header is an absolute epoch timestamp and is converted to seconds from
// now, clamped at zero when already past.
func ExtractHeaders(h http.Header) (resetSeconds *int64, remaining, limit *int) {
	return extractHeadersAt(h, time.Now())
}

func extractHeadersAt(h http.Header, now time.Time) (resetSeconds *int64, remaining, limit *int) {
	if v, err := strconv.Atoi(h.Get(HeaderLimit)); err == nil {
		limit = &v
	}
	if v, err := strconv.Atoi(h.Get(HeaderRemaining)); err == nil {
		remaining = &v
	}
	if epoch, err := strconv.ParseInt(h.Get(HeaderReset), 10, 64); err == nil {
		secs := epoch - now.Unix()
		if secs < 0 {
			secs = 0
		}
		resetSeconds = &secs
	}
	return resetSeconds, remaining, limit
}
