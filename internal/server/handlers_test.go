package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"quicknotes/internal/config"
	"quicknotes/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func newTestRouter(t *testing.T, rt http.RoundTripper) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, hub := newTestService(t, rt)
	cfg := config.FileConfig{Debug: true}
	engine := BuildEngine(&cfg, svc, NewBroadcaster(hub))
	return engine, svc
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := doJSON(t, engine, "GET", "/healthz", "")
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	if gjson.Get(w.Body.String(), "status").String() != "ok" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestTokenStatusRoundTrip(t *testing.T) {
	engine, _ := newTestRouter(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"object":"user"}`), nil
	}))

	w := doJSON(t, engine, "GET", "/api/token", "")
	if gjson.Get(w.Body.String(), "token_set").Bool() {
		t.Fatal("fresh server must report token_set=false")
	}

	w = doJSON(t, engine, "POST", "/api/token", `{"api_token":"secret_tok"}`)
	if w.Code != 200 {
		t.Fatalf("set token status = %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, "GET", "/api/token", "")
	if !gjson.Get(w.Body.String(), "token_set").Bool() {
		t.Fatal("token_set must flip to true")
	}
	if gjson.Get(w.Body.String(), "configured").Bool() {
		t.Fatal("configured requires a selected page too")
	}
}

func TestSetTokenMalformedBody(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := doJSON(t, engine, "POST", "/api/token", `{"api_token": 42`)
	if w.Code != 400 {
		t.Fatalf("status = %d", w.Code)
	}
	if gjson.Get(w.Body.String(), "code").String() != "VALIDATION_ERROR" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestNoteWithoutConfigIsConflict(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := doJSON(t, engine, "POST", "/api/notes", `{"text":"Buy milk"}`)
	if w.Code != 409 {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if gjson.Get(body, "code").String() != "CONFIG_ERROR" {
		t.Fatalf("body = %s", body)
	}
	if gjson.Get(body, "recovery").String() != "open_settings" {
		t.Fatalf("recovery = %s", gjson.Get(body, "recovery").String())
	}
}

func TestUpstreamRateLimitSurfaces(t *testing.T) {
	engine, svc := newTestRouter(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/v1/users/me" {
			return jsonResponse(200, `{"object":"user"}`), nil
		}
		resp := jsonResponse(429, `{"code":"rate_limited","message":"slow down"}`)
		resp.Header.Set(ratelimit.HeaderRemaining, "0")
		resp.Header.Set(ratelimit.HeaderReset, strconv.FormatInt(time.Now().Add(60*time.Second).Unix(), 10))
		return resp, nil
	}))
	if err := svc.SetAPIToken(context.Background(), "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	w := doJSON(t, engine, "GET", "/api/pages", "")
	if w.Code != 429 {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if gjson.Get(w.Body.String(), "code").String() != "NOTION_RATE_LIMIT" {
		t.Fatalf("body = %s", w.Body.String())
	}

	w = doJSON(t, engine, "GET", "/api/ratelimit", "")
	status := w.Body.String()
	if !gjson.Get(status, "is_limited").Bool() {
		t.Fatalf("status endpoint = %s", status)
	}
	if gjson.Get(status, "message").String() == "" {
		t.Fatal("limited status must carry a message")
	}
}

func TestSelectedPageLifecycle(t *testing.T) {
	engine, svc := newTestRouter(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, listingBody), nil
	}))
	if err := svc.SetAPIToken(context.Background(), "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	w := doJSON(t, engine, "GET", "/api/pages/selected", "")
	if gjson.Get(w.Body.String(), "selected").Type != gjson.Null {
		t.Fatalf("expected null selection, got %s", w.Body.String())
	}

	w = doJSON(t, engine, "PUT", "/api/pages/selected", `{"id":"page-1","title":"Inbox"}`)
	if w.Code != 200 {
		t.Fatalf("put status = %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, "GET", "/api/pages/selected", "")
	if gjson.Get(w.Body.String(), "selected.id").String() != "page-1" {
		t.Fatalf("body = %s", w.Body.String())
	}

	w = doJSON(t, engine, "GET", "/api/pages/page-1", "")
	if gjson.Get(w.Body.String(), "title").String() != "Inbox" {
		t.Fatalf("page body = %s", w.Body.String())
	}
}

func TestListPagesPayload(t *testing.T) {
	engine, svc := newTestRouter(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, listingBody), nil
	}))
	if err := svc.SetAPIToken(context.Background(), "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	w := doJSON(t, engine, "GET", "/api/pages", "")
	if w.Code != 200 {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	pages := gjson.Get(w.Body.String(), "pages")
	if len(pages.Array()) != 1 || pages.Get("0.id").String() != "page-1" {
		t.Fatalf("body = %s", w.Body.String())
	}
}
