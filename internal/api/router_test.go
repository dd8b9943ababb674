package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/dto"
	"github.com/guttosm/tradenorm/internal/domain/models"
)

var testLimits = Limits{MaxUploadBytes: 1 << 20, RateLimitRPS: 100, RateLimitBurst: 100}

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockTradeService{result: broker.Result{Trades: []models.Trade{sampleTrade()}}}
	r := NewRouter(NewHandler(svc), testLimits)

	w := postFiles(t, r, "/api/v1/normalize/schwab", [2]string{"a.json", "{}"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	var out dto.NormalizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if len(out.Trades) != 1 || out.Trades[0].Ticker != "AAPL" {
		t.Fatalf("unexpected body: %+v", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("trades: expected 200, got %d", w.Code)
	}
}

func TestNewRouter_UploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limits := testLimits
	limits.MaxUploadBytes = 64
	r := NewRouter(NewHandler(&mockTradeService{}), limits)

	w := postFiles(t, r, "/api/v1/imports/schwab", [2]string{"big.json", strings.Repeat("x", 256)})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}

	// the cap applies to uploads only
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trades?ticker="+strings.Repeat("A", 100), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("trades: expected 200, got %d", w.Code)
	}
}

func TestNewRouter_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradeService{}), Limits{MaxUploadBytes: 1 << 20, RateLimitRPS: 0.001, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trades", bytes.NewReader(nil)))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradeService{}), testLimits)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/aggregate", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
