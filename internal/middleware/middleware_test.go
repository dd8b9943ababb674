package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { _ = c.Error(assertErr{}) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("secret detail") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret detail") {
		t.Fatalf("panic value leaked to the client: %s", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	cases := []struct {
		name   string
		reqs   int
		burst  int
		expect int
	}{
		{name: "within burst", reqs: 2, burst: 3, expect: http.StatusOK},
		{name: "exceed burst", reqs: 5, burst: 3, expect: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			// refill far slower than the test runs
			r.Use(RateLimiter(0.001, tc.burst))
			r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
			var last int
			for i := 0; i < tc.reqs; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				last = w.Code
			}
			if last != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, last)
			}
		})
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	l := &ipLimiter{visitors: map[string]*visitor{}, rps: 0.001, burst: 1, lastGC: time.Now()}
	now := time.Now()
	if !l.allow("1.1.1.1", now) || l.allow("1.1.1.1", now) {
		t.Fatalf("first request allowed, second denied expected")
	}
	if !l.allow("2.2.2.2", now) {
		t.Fatalf("other client must have its own bucket")
	}
	later := now.Add(idleTTL * 2)
	l.allow("3.3.3.3", later)
	if _, ok := l.visitors["1.1.1.1"]; ok {
		t.Fatalf("idle visitor not collected")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		expect int
	}{
		{name: "under limit", body: "abc", expect: http.StatusOK},
		{name: "over limit", body: "abcdefghijk", expect: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(MaxBodyBytes(5))
			r.POST("/", func(c *gin.Context) {
				if _, err := io.ReadAll(c.Request.Body); err != nil {
					AbortWithError(c, http.StatusRequestEntityTooLarge, "too large", err)
					return
				}
				c.String(http.StatusOK, "ok")
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			if w.Code != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, w.Code)
			}
		})
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
}
