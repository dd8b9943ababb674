package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/guttosm/tradenorm/internal/broker"
)

func TestNewNormalizeResponse_NeverNull(t *testing.T) {
	resp := NewNormalizeResponse("schwab", 1, broker.Result{})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"trades":[]`) || !strings.Contains(string(b), `"warnings":[]`) {
		t.Fatalf("json = %s", b)
	}
}

func TestNewTradesResponse(t *testing.T) {
	resp := NewTradesResponse(nil)
	if resp.Count != 0 || resp.Trades == nil {
		t.Fatalf("resp = %+v", resp)
	}
}
