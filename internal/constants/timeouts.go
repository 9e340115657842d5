package constants

import "time"

// HTTP timeouts for upstream Notion calls.
const (
	// NotionRequestTimeout bounds every upstream API call end to end.
	NotionRequestTimeout = 10 * time.Second

	DefaultDialTimeout         = 10 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultKeepAlive           = 30 * time.Second
	DefaultIdleConnTimeout     = 90 * time.Second

	MaxIdleConns        = 16
	MaxIdleConnsPerHost = 8
)

const (
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
