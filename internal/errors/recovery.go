package errors

// RecoveryAction tells the presentation layer how the user can get unstuck.
type RecoveryAction string

const (
	RecoveryRetryNow        RecoveryAction = "retry_now"
	RecoveryRetryLater      RecoveryAction = "retry_later"
	RecoveryOpenSettings    RecoveryAction = "open_settings"
	RecoveryCheckConnection RecoveryAction = "check_connection"
	RecoveryRestart         RecoveryAction = "restart"
)

// Recovery picks the action for this error. API errors key off the status
// code: auth and missing-resource problems point at settings, rate limits
// and server trouble mean come back later.
func (e *AppError) Recovery() RecoveryAction {
	switch e.Kind {
	case KindRateLimited:
		return RecoveryRetryLater
	case KindNetwork:
		return RecoveryCheckConnection
	case KindValidation:
		return RecoveryRetryNow
	case KindConfig:
		return RecoveryOpenSettings
	case KindAPI:
		switch {
		case e.StatusCode == 401 || e.StatusCode == 403 || e.StatusCode == 404:
			return RecoveryOpenSettings
		case e.StatusCode == 429 || e.StatusCode >= 500:
			return RecoveryRetryLater
		case e.StatusCode > 0:
			return RecoveryRetryNow
		}
	}
	return RecoveryRestart
}
