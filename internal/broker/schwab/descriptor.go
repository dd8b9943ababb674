package schwab

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/domain/models"
)

// optionPattern matches Schwab option symbols, e.g. "AAPL 01/17/2025 150.00 C".
var optionPattern = regexp.MustCompile(`^([A-Z][A-Z0-9.]*)\s+(\d{2}/\d{2}/(?:\d{4}|\d{2}))\s+(\d+(?:\.\d+)?)\s+(C|P|CALL|PUT)$`)

// parseOptionSymbol extracts the contract from a Schwab option symbol.
func parseOptionSymbol(symbol string) (models.OptionInfo, bool) {
	m := optionPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(symbol)))
	if m == nil {
		return models.OptionInfo{}, false
	}

	layout := "01/02/2006"
	if len(m[2]) == len("01/02/06") {
		layout = "01/02/06"
	}
	exp, err := time.Parse(layout, m[2])
	if err != nil {
		return models.OptionInfo{}, false
	}
	strike, err := decimal.NewFromString(m[3])
	if err != nil {
		return models.OptionInfo{}, false
	}

	kind := models.Call
	if m[4] == "P" || m[4] == "PUT" {
		kind = models.Put
	}
	return models.OptionInfo{
		UnderlyingTicker: m[1],
		OptionType:       kind,
		StrikePrice:      strike,
		ExpirationDate:   exp,
	}, true
}

// isCUSIP guesses whether a symbol field holds a CUSIP instead of a ticker:
// all digits, or longer than five characters with at least one digit.
func isCUSIP(symbol string) bool {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits == len(s) {
		return true
	}
	return len(s) > 5 && digits > 0
}

// isPlainTicker reports whether symbol is a usable, non-CUSIP ticker.
func isPlainTicker(symbol string) bool {
	s := strings.TrimSpace(symbol)
	return s != "" && !isCUSIP(s) && !strings.ContainsAny(s, " /")
}

// companySuffixes end the company-name part of a security description.
// Multi-word entries are matched as whole-word sequences.
var companySuffixes = [][]string{
	{"COM", "CL", "A"},
	{"COM", "CL", "B"},
	{"COM", "CL", "C"},
	{"COM", "NEW"},
	{"CL", "A"},
	{"CL", "B"},
	{"CL", "C"},
	{"SPONSORED", "ADR"},
	{"SPON", "ADR"},
	{"ADR"},
	{"COM"},
	{"INC"},
	{"CORP"},
	{"CORPORATION"},
	{"CO"},
	{"LTD"},
	{"PLC"},
	{"HLDGS"},
	{"HLDG"},
	{"HOLDINGS"},
	{"GROUP"},
	{"N", "V"},
	{"S", "A"},
	{"ETF"},
}

const minCompanyName = 3

// companyName cuts a security description at the first corporate suffix.
// The result is only a join key; "" means no usable name.
func companyName(description string) string {
	words := strings.Fields(strings.ToUpper(description))
	for i, w := range words {
		words[i] = strings.Trim(w, ".,;")
	}

	cut := len(words)
	for i := range words {
		if i > 0 && suffixAt(words, i) {
			cut = i
			break
		}
	}
	name := strings.TrimSpace(strings.Join(words[:cut], " "))
	if len(name) < minCompanyName {
		return ""
	}
	return name
}

func suffixAt(words []string, i int) bool {
	for _, suffix := range companySuffixes {
		if i+len(suffix) > len(words) {
			continue
		}
		match := true
		for j, s := range suffix {
			if words[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

var parenTicker = regexp.MustCompile(`\(([A-Z][A-Z0-9.\-]{0,9})\)`)

// tickerInParens returns the last "(XXXX)" token of a description.
func tickerInParens(description string) (string, bool) {
	all := parenTicker.FindAllStringSubmatch(strings.ToUpper(description), -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1][1], true
}

// containsAny reports whether the upper-cased text holds one of markers.
func containsAny(text string, markers ...string) bool {
	upper := strings.ToUpper(text)
	for _, m := range markers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
