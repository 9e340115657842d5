package errors

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// MapHTTPError maps a non-2xx, non-429 Notion response to an AppError.
// Notion error bodies carry {"code": "...", "message": "..."}.
func MapHTTPError(statusCode int, body []byte) *AppError {
	code := gjson.GetBytes(body, "code").String()
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = fallbackMessage(statusCode)
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return NewAPI(statusCode, code, msg)
}

func fallbackMessage(statusCode int) string {
	switch statusCode {
	case 400:
		return "Invalid request"
	case 401:
		return "Invalid authentication"
	case 403:
		return "Permission denied"
	case 404:
		return "Resource not found"
	case 500:
		return "Internal server error"
	case 502:
		return "Bad gateway"
	case 503:
		return "Service temporarily unavailable"
	case 504:
		return "Request timeout"
	default:
		return fmt.Sprintf("HTTP %d error", statusCode)
	}
}
