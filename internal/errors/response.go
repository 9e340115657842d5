package errors

// ErrorResponse is the wire envelope returned to the presentation layer.
type ErrorResponse struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Details  string         `json:"details,omitempty"`
	Recovery RecoveryAction `json:"recovery"`
}

// ToResponse converts any error into the wire envelope.
func ToResponse(err error) ErrorResponse {
	ae := AsAppError(err)

	code := "UNKNOWN_ERROR"
	details := ""
	switch ae.Kind {
	case KindRateLimited:
		code = "NOTION_RATE_LIMIT"
		details = "Please try again later."
	case KindAPI:
		code = "NOTION_API_ERROR"
		if ae.StatusCode == 401 || ae.StatusCode == 403 {
			code = "NOTION_AUTH_ERROR"
			details = "Please check your API token."
		}
	case KindNetwork:
		code = "NETWORK_ERROR"
		details = "Please check your internet connection."
	case KindValidation:
		code = "VALIDATION_ERROR"
	case KindConfig:
		code = "CONFIG_ERROR"
	}

	return ErrorResponse{
		Code:     code,
		Message:  ae.Message,
		Details:  details,
		Recovery: ae.Recovery(),
	}
}

// HTTPStatus picks the status code the local API should answer with.
func HTTPStatus(err error) int {
	ae := AsAppError(err)
	switch ae.Kind {
	case KindRateLimited:
		return 429
	case KindValidation:
		return 400
	case KindConfig:
		return 409
	case KindNetwork:
		return 502
	case KindAPI:
		if ae.StatusCode > 0 {
			return ae.StatusCode
		}
	}
	return 500
}
