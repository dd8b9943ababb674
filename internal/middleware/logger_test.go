package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradenorm/internal/logger"
)

// captureLogs points the global logger at a buffer for the duration of t.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.InitWith("debug", false, &buf)
	t.Cleanup(func() { logger.InitWith("info", false, io.Discard) })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", lines[len(lines)-1], err)
	}
	return entry
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		name    string
		handler gin.HandlerFunc
		level   string
		errors  bool
	}{
		{name: "ok", handler: func(c *gin.Context) { c.String(http.StatusOK, "ok") }, level: "info"},
		{
			name: "client error",
			handler: func(c *gin.Context) {
				AbortWithError(c, http.StatusBadRequest, "bad upload", errors.New("missing file"))
			},
			level:  "warn",
			errors: true,
		},
		{name: "server error", handler: func(c *gin.Context) { c.Status(http.StatusBadGateway) }, level: "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			buf := captureLogs(t)
			r := gin.New()
			r.Use(RequestID(), RequestLogger())
			r.POST("/api/v1/normalize/:broker", tc.handler)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/normalize/schwab", nil)
			req.Header.Set(RequestIDHeader, "req-42")
			r.ServeHTTP(httptest.NewRecorder(), req)

			entry := lastLine(t, buf)
			if entry["level"] != tc.level || entry["message"] != "http_request" {
				t.Fatalf("entry = %v", entry)
			}
			if entry["request_id"] != "req-42" || entry["broker"] != "schwab" || entry["method"] != http.MethodPost {
				t.Fatalf("missing request fields: %v", entry)
			}
			if _, ok := entry["errors"]; ok != tc.errors {
				t.Fatalf("errors field present=%v, want %v", ok, tc.errors)
			}
		})
	}
}

func TestRequestLogger_WithoutRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/v1/trades", func(c *gin.Context) { c.String(http.StatusOK, "[]") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil))

	entry := lastLine(t, buf)
	if entry["request_id"] != "" || entry["path"] != "/api/v1/trades" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry["broker"]; ok {
		t.Fatalf("broker logged for a route without one: %v", entry)
	}
}

func TestRecoveryMiddleware_LogsPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)
	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entry := lastLine(t, buf)
	if entry["message"] != "panic recovered" || entry["panic"] != "kaboom" || entry["request_id"] == "" {
		t.Fatalf("entry = %v", entry)
	}
}
