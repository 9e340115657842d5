package ratelimit

import "fmt"

const baseLimitMessage = "You've reached Notion's API rate limit."

// LimitMessage builds the user-facing explanation for a limited
// credential. Header-derived reset times produce concrete waits; backoff
// estimates stay deliberately vague.
func (m *Manager) LimitMessage(credential string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[credential]
	if !ok {
		return baseLimitMessage
	}

	if until, known := st.TimeUntilReset(); known {
		seconds := int64(until.Seconds())
		switch {
		case seconds < 60:
			return fmt.Sprintf("%s Please try again in %d seconds.", baseLimitMessage, seconds)
		case seconds < 3600:
			minutes := (seconds + 59) / 60
			return fmt.Sprintf("%s Please try again in %d %s.", baseLimitMessage, minutes, plural(minutes, "minute"))
		default:
			hours := (seconds + 3599) / 3600
			return fmt.Sprintf("%s Please try again in %d %s.", baseLimitMessage, hours, plural(hours, "hour"))
		}
	}

	seconds := int64(st.RecommendedDelay().Seconds())
	switch {
	case seconds < 60:
		return baseLimitMessage + " Please wait a few seconds before trying again."
	case seconds < 300:
		return baseLimitMessage + " Please wait a few minutes before trying again."
	default:
		return baseLimitMessage + " Please try again later."
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
