package errors

import "strings"

// MapNetworkError maps a transport failure (no HTTP response received) to
// an AppError. DNS and connection failures hint that we may be offline;
// timeouts do not, since the host resolved and the dial got through.
func MapNetworkError(err error) *AppError {
	errMsg := err.Error()

	mapped := &AppError{Kind: KindNetwork}
	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded"):
		mapped.Message = "Request timeout: " + errMsg
	case strings.Contains(errMsg, "context canceled"):
		mapped.Message = "Request was canceled: " + errMsg
	case strings.Contains(errMsg, "connection refused"):
		mapped.Message = "Connection refused: " + errMsg
		mapped.IsOffline = true
	case strings.Contains(errMsg, "no such host") || strings.Contains(errMsg, "name resolution"):
		mapped.Message = "DNS resolution error: " + errMsg
		mapped.IsOffline = true
	case strings.Contains(errMsg, "EOF") || strings.Contains(errMsg, "connection reset"):
		mapped.Message = "Connection error: " + errMsg
	case strings.Contains(errMsg, "certificate") || strings.Contains(errMsg, "tls"):
		mapped.Message = "TLS/Certificate error: " + errMsg
	default:
		mapped.Message = "Network error: " + errMsg
	}
	return mapped
}
