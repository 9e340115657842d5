package constants

import "time"

// Rate limit backoff parameters. Backoff only kicks in when the API gives
// us no usable reset or remaining-quota headers.
const (
	BackoffBase        = 1 * time.Second
	BackoffCap         = 5 * time.Minute
	BackoffMaxExponent = 10

	// Jitter spread applied to computed backoff delays (±25%).
	JitterMin = 0.75
	JitterMax = 1.25

	// RecentSuccessCap bounds the per-credential success history.
	RecentSuccessCap = 20
)
