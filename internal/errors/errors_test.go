package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestMapHTTPErrorParsesBody(t *testing.T) {
	ae := MapHTTPError(404, []byte(`{"code":"object_not_found","message":"Could not find block."}`))
	if ae.Kind != KindAPI || ae.StatusCode != 404 {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if ae.Code != "object_not_found" || ae.Message != "Could not find block." {
		t.Fatalf("body not parsed: %+v", ae)
	}
}

func TestMapHTTPErrorFallbackMessages(t *testing.T) {
	cases := map[int]string{
		400: "Invalid request",
		401: "Invalid authentication",
		403: "Permission denied",
		404: "Resource not found",
		500: "Internal server error",
		503: "Service temporarily unavailable",
	}
	for status, want := range cases {
		ae := MapHTTPError(status, []byte(`not json`))
		if ae.Message != want {
			t.Errorf("status %d: message = %q, want %q", status, ae.Message, want)
		}
	}
	if got := MapHTTPError(418, nil).Message; got != "HTTP 418 error" {
		t.Errorf("unknown status message = %q", got)
	}
}

func TestMapHTTPErrorTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 300)
	ae := MapHTTPError(500, []byte(`{"message":"`+long+`"}`))
	if len(ae.Message) != 203 || !strings.HasSuffix(ae.Message, "...") {
		t.Fatalf("message not truncated: len=%d", len(ae.Message))
	}
}

func TestMapNetworkErrorClassification(t *testing.T) {
	cases := []struct {
		err     string
		offline bool
		prefix  string
	}{
		{"dial tcp: i/o timeout", false, "Request timeout"},
		{"context deadline exceeded", false, "Request timeout"},
		{"context canceled", false, "Request was canceled"},
		{"dial tcp 127.0.0.1:80: connection refused", true, "Connection refused"},
		{"lookup api.notion.com: no such host", true, "DNS resolution error"},
		{"unexpected EOF", false, "Connection error"},
		{"tls: handshake failure", false, "TLS/Certificate error"},
		{"something odd", false, "Network error"},
	}
	for _, tc := range cases {
		ae := MapNetworkError(errors.New(tc.err))
		if ae.Kind != KindNetwork {
			t.Errorf("%q: kind = %q", tc.err, ae.Kind)
		}
		if ae.IsOffline != tc.offline {
			t.Errorf("%q: offline = %v, want %v", tc.err, ae.IsOffline, tc.offline)
		}
		if !strings.HasPrefix(ae.Message, tc.prefix) {
			t.Errorf("%q: message = %q, want prefix %q", tc.err, ae.Message, tc.prefix)
		}
	}
}

func TestRecoveryActions(t *testing.T) {
	cases := []struct {
		err  *AppError
		want RecoveryAction
	}{
		{NewRateLimited("limited", nil, nil, nil), RecoveryRetryLater},
		{MapNetworkError(errors.New("connection refused")), RecoveryCheckConnection},
		{NewValidation("empty"), RecoveryRetryNow},
		{NewConfig("no token"), RecoveryOpenSettings},
		{NewAPI(401, "unauthorized", "bad token"), RecoveryOpenSettings},
		{NewAPI(403, "restricted", "no access"), RecoveryOpenSettings},
		{NewAPI(404, "object_not_found", "gone"), RecoveryOpenSettings},
		{NewAPI(500, "", "boom"), RecoveryRetryLater},
		{NewAPI(400, "validation_error", "bad"), RecoveryRetryNow},
		{&AppError{Kind: KindAPI}, RecoveryRestart},
	}
	for _, tc := range cases {
		if got := tc.err.Recovery(); got != tc.want {
			t.Errorf("%+v: recovery = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestToResponseCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{NewRateLimited("limited", nil, nil, nil), "NOTION_RATE_LIMIT"},
		{NewAPI(401, "unauthorized", "bad"), "NOTION_AUTH_ERROR"},
		{NewAPI(500, "", "boom"), "NOTION_API_ERROR"},
		{MapNetworkError(errors.New("unexpected EOF")), "NETWORK_ERROR"},
		{NewValidation("empty"), "VALIDATION_ERROR"},
		{NewConfig("missing"), "CONFIG_ERROR"},
	}
	for _, tc := range cases {
		resp := ToResponse(tc.err)
		if resp.Code != tc.code {
			t.Errorf("%v: code = %q, want %q", tc.err, resp.Code, tc.code)
		}
		if resp.Recovery == "" {
			t.Errorf("%v: missing recovery action", tc.err)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewRateLimited("limited", nil, nil, nil), 429},
		{NewValidation("empty"), 400},
		{NewConfig("missing"), 409},
		{MapNetworkError(errors.New("unexpected EOF")), 502},
		{NewAPI(404, "", "gone"), 404},
		{NewAPI(0, "", "unknown"), 500},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, got, tc.status)
		}
	}
}
