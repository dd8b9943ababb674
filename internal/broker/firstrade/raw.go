package firstrade

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/money"
)

const (
	dateLayout = "2006-01-02"
	bom        = "\ufeff"
)

// header is the exact, order-sensitive column list of a Firstrade export.
var header = []string{
	"Symbol", "Quantity", "Price", "Action", "Description", "TradeDate",
	"SettledDate", "Interest", "Amount", "Commission", "Fee", "CUSIP", "RecordType",
}

const (
	colSymbol = iota
	colQuantity
	colPrice
	colAction
	colDescription
	colTradeDate
	colSettledDate
	colInterest
	colAmount
	colCommission
	colFee
	colCUSIP
	colRecordType
)

// Record types and actions as they appear in the export (compared upper case).
const (
	recordTrade     = "TRADE"
	recordFinancial = "FINANCIAL"

	actionBuy      = "BUY"
	actionSell     = "SELL"
	actionDividend = "DIVIDEND"
	actionInterest = "INTEREST"
	actionOther    = "OTHER"
)

// row is one decoded data line.
type row struct {
	ordinal     int
	symbol      string
	action      string
	description string // upper case
	recordType  string
	cusip       string
	settled     string
	tradeDate   time.Time
	quantity    decimal.Decimal
	price       decimal.Decimal
	amount      decimal.Decimal
	commission  decimal.Decimal
	fee         decimal.Decimal
	source      string
}

// decode validates the header and returns the data rows. Ordinals start at
// offset; the second return value is the number of data lines consumed.
func decode(data []byte, offset int, out *broker.Emitter) ([]row, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	first, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, broker.HeaderError(broker.Firstrade, "missing header row")
		}
		return nil, 0, broker.HeaderError(broker.Firstrade, "read header: %w", err)
	}
	if err := checkHeader(first); err != nil {
		return nil, 0, err
	}

	var rows []row
	n := 0
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ordinal := offset + n
		n++
		if err != nil {
			out.Warnf("firstrade: row %d: skipped unreadable line: %v", ordinal, err)
			continue
		}
		if len(fields) < len(header) {
			out.Warnf("firstrade: row %d: skipped, %d columns, want %d", ordinal, len(fields), len(header))
			continue
		}
		rec, ok := decodeRow(fields, ordinal, out)
		if !ok {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, n, nil
}

// checkHeader compares cells byte for byte; only a UTF-8 BOM on the first
// cell is tolerated.
func checkHeader(got []string) error {
	if len(got) != len(header) {
		return broker.HeaderError(broker.Firstrade, "got %d columns, want %d", len(got), len(header))
	}
	for i, want := range header {
		cell := got[i]
		if i == 0 {
			cell = strings.TrimPrefix(cell, bom)
		}
		if cell != want {
			return broker.HeaderError(broker.Firstrade, "column %d is %q, want %q", i+1, cell, want)
		}
	}
	return nil
}

func decodeRow(fields []string, ordinal int, out *broker.Emitter) (row, bool) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	date, err := broker.ParseDay(dateLayout, fields[colTradeDate])
	if err != nil {
		out.Warnf("firstrade: row %d: skipped, invalid trade date %q", ordinal, fields[colTradeDate])
		return row{}, false
	}

	num := func(col int, name string) decimal.Decimal {
		v, err := money.Parse(fields[col])
		if err != nil {
			out.Warnf("firstrade: row %d: %s %q is not a number, using 0", ordinal, name, fields[col])
		}
		return v
	}

	return row{
		ordinal:     ordinal,
		symbol:      strings.ToUpper(fields[colSymbol]),
		action:      strings.ToUpper(fields[colAction]),
		description: strings.ToUpper(fields[colDescription]),
		recordType:  strings.ToUpper(fields[colRecordType]),
		cusip:       fields[colCUSIP],
		settled:     fields[colSettledDate],
		tradeDate:   date,
		quantity:    num(colQuantity, "Quantity"),
		price:       num(colPrice, "Price"),
		amount:      num(colAmount, "Amount"),
		commission:  num(colCommission, "Commission"),
		fee:         num(colFee, "Fee"),
		source:      encodeLine(fields[:len(header)]),
	}, true
}

func encodeLine(fields []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimRight(buf.String(), "\r\n")
}
