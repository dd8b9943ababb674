package firstrade

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
)

var (
	depositMarkers  = []string{"ACH DEPOSIT", "WIRE FUNDS RECEIVED"}
	withdrawMarkers = []string{"WIRE TRANSFER", "REVERSE ACH DEPOSIT", "ATM WITHDRAWAL", "CASH ADVANCE"}
	xferMarkers     = []string{"XFER MARGIN TO CASH", "XFER CASH TO MARGIN"}
)

// rules is the ordered classification table; the first match wins and rows
// matched by nothing are dropped.
var rules = []broker.Rule[row]{
	{Name: "adr-fee", Match: all(financial, action(actionOther), has("ADR FEE")), Apply: adrFee},
	{Name: "deposit", Match: all(financial, action(actionOther), has(depositMarkers...), not(has("REVERSE"))), Apply: cashMove(models.Deposit)},
	{Name: "withdraw", Match: all(financial, action(actionOther), has(withdrawMarkers...), not(has("FEE"))), Apply: cashMove(models.Withdraw)},
	{Name: "internal-transfer", Match: all(financial, action(actionOther), has(xferMarkers...)), Apply: broker.Drop[row]},
	{Name: "rebate", Match: all(financial, action(actionOther), has("REIMB", "REBATE"), positive), Apply: cashMove(models.Deposit)},
	{Name: "fee", Match: all(financial, action(actionOther), has("FEE")), Apply: fee},
	{Name: "dividend", Match: all(financial, action(actionDividend)), Apply: dividend},
	{Name: "reinvest", Match: all(financial, action(actionOther), has("REIN @")), Apply: reinvest},
	{Name: "expired", Match: all(financial, action(actionOther), has("EXPIRED")), Apply: optionEvent(models.OptionExpiration)},
	{Name: "assigned", Match: all(financial, action(actionOther), has("ASSIGNED")), Apply: optionEvent(models.OptionAssignment)},
	{Name: "trade", Match: all(trade, action(actionBuy, actionSell)), Apply: tradeRow},
	{Name: "interest", Match: action(actionInterest), Apply: interest},
}

func all(preds ...func(row) bool) func(row) bool {
	return func(r row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func not(p func(row) bool) func(row) bool {
	return func(r row) bool { return !p(r) }
}

func financial(r row) bool { return r.recordType == recordFinancial }
func trade(r row) bool     { return r.recordType == recordTrade }
func positive(r row) bool  { return r.amount.IsPositive() }

func action(names ...string) func(row) bool {
	return func(r row) bool {
		for _, n := range names {
			if r.action == n {
				return true
			}
		}
		return false
	}
}

func has(markers ...string) func(row) bool {
	return func(r row) bool {
		for _, m := range markers {
			if strings.Contains(r.description, m) {
				return true
			}
		}
		return false
	}
}

func base(r row, t models.TradeType) models.Trade {
	note := r.description
	if costs := r.commission.Abs().Add(r.fee.Abs()); !costs.IsZero() {
		note += " (commission+fee " + costs.StringFixed(2) + ")"
	}
	return models.Trade{
		ID:          broker.TradeID(broker.Firstrade, r.ordinal, r.source),
		Type:        t,
		Ticker:      r.symbol,
		Quantity:    decimal.Zero,
		Price:       decimal.Zero,
		TotalAmount: models.CashFlow(t, r.amount),
		TradeDate:   r.tradeDate,
		Note:        note,
		RawSource:   r.source,
	}
}

func adrFee(r row, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	t := base(r, models.Fee)
	t.FeeInfo = &models.FeeInfo{Type: models.FeeAdrMgmt, Amount: r.amount.Abs()}
	out.Emit(t)
}

func cashMove(typ models.TradeType) func(row, *broker.Emitter) {
	return func(r row, out *broker.Emitter) {
		if r.amount.IsZero() {
			return
		}
		out.Emit(base(r, typ))
	}
}

func feeType(description string) models.FeeType {
	switch {
	case strings.Contains(description, "FOREIGN"):
		return models.FeeForeignTransaction
	case strings.Contains(description, "WIRE"):
		return models.FeeWire
	case strings.Contains(description, "ACH"):
		return models.FeeAch
	default:
		return models.FeeOther
	}
}

func fee(r row, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	t := base(r, models.Fee)
	t.FeeInfo = &models.FeeInfo{Type: feeType(r.description), Amount: r.amount.Abs()}
	out.Emit(t)
}

func dividendType(description string) models.DividendType {
	switch {
	case strings.Contains(description, "CAP GAIN"), strings.Contains(description, "CAPITAL GAIN"):
		return models.DividendCapitalGain
	case strings.Contains(description, "NON-QUALIFIED"), strings.Contains(description, "NON QUALIFIED"):
		return models.DividendOrdinary
	case strings.Contains(description, "QUALIFIED"):
		return models.DividendQualified
	default:
		return models.DividendOrdinary
	}
}

func dividend(r row, out *broker.Emitter) {
	if r.amount.IsZero() || r.symbol == "" {
		return
	}
	net := r.amount.Abs()
	tax, _ := taxWithheld(r.description)
	info := &models.DividendInfo{
		Type:        dividendType(r.description),
		GrossAmount: net.Add(tax),
		TaxWithheld: tax,
	}
	t := base(r, models.Dividend)
	t.Quantity = r.quantity.Abs()
	t.TotalAmount = info.NetAmount()
	t.DividendInfo = info
	out.Emit(t)
}

func reinvest(r row, out *broker.Emitter) {
	if !r.quantity.IsPositive() || r.symbol == "" {
		return
	}
	price, ok := reinvestPrice(r.description)
	if !ok {
		price = r.price.Abs()
	}
	t := base(r, models.DividendReinvest)
	t.Quantity = r.quantity
	t.Price = price
	out.Emit(t)
}

func optionEvent(typ models.TradeType) func(row, *broker.Emitter) {
	return func(r row, out *broker.Emitter) {
		info, ok := optionIn(r.description)
		if !ok || r.quantity.Abs().IsZero() {
			return
		}
		t := base(r, typ)
		t.Ticker = info.UnderlyingTicker
		t.Quantity = r.quantity.Abs()
		t.OptionInfo = &info
		out.Emit(t)
	}
}

func tradeRow(r row, out *broker.Emitter) {
	buy := r.action == actionBuy
	if isContract(r.description) {
		info, ok := optionAt(r.description)
		if !ok {
			out.Warnf("firstrade: row %d: unparseable option contract %q dropped", r.ordinal, r.description)
			return
		}
		t := base(r, optionType(buy, r.description))
		t.Ticker = info.UnderlyingTicker
		t.Quantity = r.quantity.Abs()
		t.Price = r.price.Abs()
		t.OptionInfo = &info
		out.Emit(t)
		return
	}
	if r.symbol == "" {
		return
	}
	typ := models.StockSell
	if buy {
		typ = models.StockBuy
	}
	t := base(r, typ)
	t.Quantity = r.quantity.Abs()
	t.Price = r.price.Abs()
	out.Emit(t)
}

func optionType(buy bool, description string) models.TradeType {
	opening := strings.Contains(description, "OPEN CONTRACT")
	closing := strings.Contains(description, "CLOSING CONTRACT")
	switch {
	case buy && opening:
		return models.OptionBuyToOpen
	case buy && closing:
		return models.OptionBuyToClose
	case buy:
		return models.OptionBuy
	case opening:
		return models.OptionSellToOpen
	case closing:
		return models.OptionSellToClose
	default:
		return models.OptionSell
	}
}

func interest(r row, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	typ := models.InterestIncome
	switch {
	case strings.Contains(r.description, "MARGIN"), strings.Contains(r.description, "DEBIT"):
		typ = models.MarginInterest
	case strings.Contains(r.description, "CREDIT"), strings.Contains(r.description, "LENDING"), strings.Contains(r.description, "REBATE"):
		typ = models.InterestIncome
	case r.amount.IsNegative():
		typ = models.MarginInterest
	}
	out.Emit(base(r, typ))
}
