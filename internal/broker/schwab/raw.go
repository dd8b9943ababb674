package schwab

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/money"
)

const dateLayout = "01/02/2006"

// document is the top-level object of a Schwab brokerage export.
type document struct {
	FromDate                string             `json:"FromDate"`
	ToDate                  string             `json:"ToDate"`
	TotalTransactionsAmount string             `json:"TotalTransactionsAmount"`
	BrokerageTransactions   *[]json.RawMessage `json:"BrokerageTransactions"`
}

type rawTransaction struct {
	Date        string `json:"Date"`
	Action      string `json:"Action"`
	Symbol      string `json:"Symbol"`
	Description string `json:"Description"`
	Quantity    string `json:"Quantity"`
	Price       string `json:"Price"`
	FeesAndComm string `json:"Fees & Comm"`
	Amount      string `json:"Amount"`
	ItemIssueID string `json:"ItemIssueId"`
	AcctgRuleCd string `json:"AcctgRuleCd"`
}

// record is a decoded row with its numeric fields parsed.
type record struct {
	ordinal  int
	raw      rawTransaction
	source   string
	date     time.Time
	dateKey  string
	symbol   string // trimmed, upper case
	quantity decimal.Decimal
	price    decimal.Decimal
	fees     decimal.Decimal
	amount   decimal.Decimal
	action   actionInfo
	known    bool
}

func decodeDocument(data []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, broker.ContainerError(broker.Schwab, "decode document: %w", err)
	}
	if doc.BrokerageTransactions == nil {
		return document{}, broker.ContainerError(broker.Schwab, "missing BrokerageTransactions array")
	}
	return doc, nil
}

// decodeRows turns the raw JSON rows into records. Ordinals continue from
// offset so concatenated files keep distinct IDs. Rows that cannot be
// decoded are dropped with a warning.
func decodeRows(doc document, offset int, out *broker.Emitter) []record {
	rows := *doc.BrokerageTransactions
	records := make([]record, 0, len(rows))
	for i, msg := range rows {
		ordinal := offset + i
		var raw rawTransaction
		if err := json.Unmarshal(msg, &raw); err != nil {
			out.Warnf("schwab: row %d: skipped undecodable transaction: %v", ordinal, err)
			continue
		}
		date, key, err := parseDate(raw.Date)
		if err != nil {
			out.Warnf("schwab: row %d: skipped, invalid date %q", ordinal, raw.Date)
			continue
		}

		rec := record{
			ordinal: ordinal,
			raw:     raw,
			source:  compact(msg),
			date:    date,
			dateKey: key,
			symbol:  strings.ToUpper(strings.TrimSpace(raw.Symbol)),
		}
		rec.action, rec.known = lookupAction(strings.TrimSpace(raw.Action))
		rec.quantity = parseField(out, ordinal, "Quantity", raw.Quantity)
		rec.price = parseField(out, ordinal, "Price", raw.Price)
		rec.fees = parseField(out, ordinal, "Fees & Comm", raw.FeesAndComm)
		rec.amount = parseField(out, ordinal, "Amount", raw.Amount)
		records = append(records, rec)
	}
	return records
}

// parseDate reads "MM/DD/YYYY" or "MM/DD/YYYY as of MM/DD/YYYY"; the first
// date wins.
func parseDate(s string) (time.Time, string, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(s), " as of ")
	first = strings.TrimSpace(first)
	t, err := broker.ParseDay(dateLayout, first)
	if err != nil {
		return time.Time{}, "", err
	}
	return t, t.Format("2006-01-02"), nil
}

func parseField(out *broker.Emitter, ordinal int, field, value string) decimal.Decimal {
	v, err := money.Parse(value)
	if err != nil {
		out.Warnf("schwab: row %d: %s %q is not a number, using 0", ordinal, field, value)
	}
	return v
}

func compact(msg json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, msg); err != nil {
		return string(msg)
	}
	return buf.String()
}
