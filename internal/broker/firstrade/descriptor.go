package firstrade

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/money"
)

const optionGrammar = `(PUT|CALL)\s+([A-Z][A-Z0-9.]*)\s+(\d{1,2}/\d{1,2}/\d{2})\s+(\d+(?:\.\d+)?)`

var (
	// Trade rows start with the contract, e.g. "PUT HIMS 11/07/25 45 ...".
	optionAtStart = regexp.MustCompile(`^` + optionGrammar + `\b`)
	// Expiration and assignment rows carry it after a prefix.
	optionAnywhere = regexp.MustCompile(`\b` + optionGrammar + `\b`)
	// contractPrefix decides option versus stock on trade rows.
	contractPrefix = regexp.MustCompile(`^(PUT|CALL)\b`)

	taxWithheldPattern = regexp.MustCompile(`NON-RES TAX WITHHELD\s*\$?\s*([\d,]+(?:\.\d+)?)`)
	reinPricePattern   = regexp.MustCompile(`REIN\s*@\s*\$?\s*([\d,]+(?:\.\d+)?)`)
)

// isContract reports whether a trade description names an option contract,
// whether or not the rest of the descriptor parses.
func isContract(description string) bool {
	return contractPrefix.MatchString(description)
}

// optionAt parses a contract at the very start of an upper-cased description.
func optionAt(description string) (models.OptionInfo, bool) {
	return matchOption(optionAtStart, description)
}

// optionIn finds a contract anywhere in an upper-cased description.
func optionIn(description string) (models.OptionInfo, bool) {
	return matchOption(optionAnywhere, description)
}

func matchOption(re *regexp.Regexp, description string) (models.OptionInfo, bool) {
	m := re.FindStringSubmatch(description)
	if m == nil {
		return models.OptionInfo{}, false
	}
	exp, err := time.Parse("1/2/06", m[3])
	if err != nil {
		return models.OptionInfo{}, false
	}
	strike, err := decimal.NewFromString(m[4])
	if err != nil {
		return models.OptionInfo{}, false
	}
	kind := models.Call
	if m[1] == "PUT" {
		kind = models.Put
	}
	return models.OptionInfo{
		UnderlyingTicker: m[2],
		OptionType:       kind,
		StrikePrice:      strike,
		ExpirationDate:   exp,
	}, true
}

// taxWithheld reads "NON-RES TAX WITHHELD $1.58".
func taxWithheld(description string) (decimal.Decimal, bool) {
	return amountAfter(taxWithheldPattern, description)
}

// reinvestPrice reads "REIN @ 28.1234".
func reinvestPrice(description string) (decimal.Decimal, bool) {
	return amountAfter(reinPricePattern, description)
}

func amountAfter(re *regexp.Regexp, description string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(description)
	if m == nil {
		return decimal.Zero, false
	}
	v, err := money.Parse(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
