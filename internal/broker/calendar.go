package broker

import (
	"fmt"
	"time"
	_ "time/tzdata" // exchange zone must resolve on hosts without zoneinfo

	"github.com/google/uuid"
)

// Regular session open of US equity exchanges.
const (
	marketOpenHour   = 9
	marketOpenMinute = 30
)

var (
	exchangeZone = loadExchangeZone()

	// idNamespace scopes trade IDs to this project.
	idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/guttosm/tradenorm/trades"))
)

func loadExchangeZone() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// MarketOpen anchors a calendar day to the exchange's opening bell so all
// trades of a day compare equal on date and fall back to type priority.
func MarketOpen(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, marketOpenHour, marketOpenMinute, 0, 0, exchangeZone)
}

// ParseDay parses s with layout and anchors the result at market open.
func ParseDay(layout, s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return MarketOpen(t.Year(), t.Month(), t.Day()), nil
}

// TradeID derives a stable identifier from the broker, the row ordinal in
// the (possibly concatenated) input and the raw row text. Identical input
// always yields identical IDs.
func TradeID(b Name, ordinal int, raw string) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s|%d|%s", b, ordinal, raw))).String()
}
