package firstrade

import (
	"testing"
	"time"

	"github.com/guttosm/tradenorm/internal/domain/models"
)

func TestOptionAt(t *testing.T) {
	cases := []struct {
		in     string
		ok     bool
		ticker string
		kind   models.OptionType
		strike string
		expiry time.Time
	}{
		{in: "PUT HIMS 11/07/25 45 HIMS & HERS OPEN CONTRACT", ok: true, ticker: "HIMS", kind: models.Put, strike: "45", expiry: time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)},
		{in: "CALL AAPL 1/17/26 187.50 APPLE INC", ok: true, ticker: "AAPL", kind: models.Call, strike: "187.50", expiry: time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)},
		{in: "APPLE INC PUT HIMS 11/07/25 45", ok: false},
		{in: "PUT HIMS 2025-11-07 45", ok: false},
		{in: "PUT HIMS", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			info, ok := optionAt(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if info.UnderlyingTicker != tc.ticker || info.OptionType != tc.kind ||
				!info.StrikePrice.Equal(d(tc.strike)) || !info.ExpirationDate.Equal(tc.expiry) {
				t.Fatalf("got %+v", info)
			}
		})
	}
}

func TestIsContract(t *testing.T) {
	cases := map[string]bool{
		"PUT HIMS 11/07/25 45 HIMS & HERS":  true,
		"CALL AAPL 1/17/2026 150 APPLE INC": true,
		"PUTNAM PREMIER INCOME TRUST":       false,
		"CALLAWAY GOLF CO":                  false,
		"APPLE INC PUT HIMS 11/07/25 45":    false,
	}
	for in, want := range cases {
		if got := isContract(in); got != want {
			t.Fatalf("isContract(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOptionIn(t *testing.T) {
	info, ok := optionIn("EXPIRED PUT HIMS 11/07/25 45 HIMS & HERS")
	if !ok || info.UnderlyingTicker != "HIMS" {
		t.Fatalf("got %+v ok=%v", info, ok)
	}
	if _, ok := optionIn("EXPIRED OPTION"); ok {
		t.Fatalf("expected no contract")
	}
}

func TestTaxWithheldAndReinvestPrice(t *testing.T) {
	cases := []struct {
		name string
		rein bool
		in   string
		want string
		ok   bool
	}{
		{name: "tax", in: "CASH DIV NON-RES TAX WITHHELD $1.58", want: "1.58", ok: true},
		{name: "tax thousands", in: "NON-RES TAX WITHHELD $1,234.50 ADJ", want: "1234.50", ok: true},
		{name: "tax absent", in: "CASH DIV ON 100 SHS", ok: false},
		{name: "rein", rein: true, in: "REIN @ 27.3400", want: "27.34", ok: true},
		{name: "rein no space", rein: true, in: "DIV REIN @27.1", want: "27.1", ok: true},
		{name: "rein absent", rein: true, in: "REINVEST", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parse := taxWithheld
			if tc.rein {
				parse = reinvestPrice
			}
			v, ok := parse(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && !v.Equal(d(tc.want)) {
				t.Fatalf("value = %s, want %s", v, tc.want)
			}
		})
	}
}
