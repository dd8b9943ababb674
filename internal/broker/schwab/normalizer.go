// Package schwab normalizes Charles Schwab brokerage JSON exports.
package schwab

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
)

// Description markers that route "symbol exchange" rows.
var (
	splitMarkers       = []string{"STOCK SPLIT", "STK SPLIT", "FORWARD SPLIT", "REVERSE SPLIT"}
	withholdingMarkers = []string{"WITHHOLDING", "TAX WITHHELD", "W/H"}
	cashMarkers        = []string{"CASH IN LIEU", "CASH DISB", "CASH RECEIPT", "CASH PAYMENT"}
	exchangeMarkers    = []string{"EXCHANGE", "EXCH", "MERGER"}
)

// Normalizer implements broker.Normalizer for Schwab exports.
type Normalizer struct{}

// New returns a Schwab normalizer.
func New() *Normalizer { return &Normalizer{} }

func (n *Normalizer) Name() broker.Name { return broker.Schwab }

// Parse returns the trades of one export and discards warnings.
func (n *Normalizer) Parse(data []byte) ([]models.Trade, error) {
	res, err := n.ParseWithWarnings(data)
	if err != nil {
		return nil, err
	}
	return res.Trades, nil
}

// ParseWithWarnings returns the trades of one export with its warnings.
func (n *Normalizer) ParseWithWarnings(data []byte) (broker.Result, error) {
	return n.ParseFiles(data)
}

// ParseFiles decodes every export, then classifies the concatenated rows in
// one pass so a CUSIP in one file can resolve against a buy in another.
func (n *Normalizer) ParseFiles(files ...[]byte) (broker.Result, error) {
	out := &broker.Emitter{}
	var rows []record
	offset := 0
	for _, data := range files {
		doc, err := decodeDocument(data)
		if err != nil {
			return broker.Result{}, err
		}
		rows = append(rows, decodeRows(doc, offset, out)...)
		offset += len(*doc.BrokerageTransactions)
	}

	newPass(rows, out).run()
	return out.Result(), nil
}

type taxKey struct {
	date   string
	symbol string
	issue  string
}

// pass holds the lookup tables of one parse call. Only consumed changes
// after construction.
type pass struct {
	rows     []record
	out      *broker.Emitter
	names    map[string]string
	taxRows  map[taxKey][]int
	consumed map[int]bool

	rules         []broker.Rule[record]
	exchangeRules []broker.Rule[record]
}

func newPass(rows []record, out *broker.Emitter) *pass {
	p := &pass{
		rows:     rows,
		out:      out,
		names:    buildNameIndex(rows),
		taxRows:  buildTaxIndex(rows),
		consumed: make(map[int]bool),
	}
	p.rules = []broker.Rule[record]{
		{Name: "dividend", Match: ofKind(kindDividend), Apply: p.dividend},
		{Name: "option", Match: ofKind(kindOption), Apply: p.option},
		{Name: "stock-split", Match: ofKind(kindSplit), Apply: p.split},
		{Name: "symbol-exchange", Match: ofKind(kindSymbolExchange), Apply: p.symbolExchange},
		{Name: "cash", Match: ofKind(kindCashTable), Apply: p.cash},
		{Name: "adr-fee", Match: ofKind(kindAdrFee), Apply: p.adrFee},
		{Name: "stock-trade", Match: ofKind(kindTrade), Apply: p.stockTrade},
	}
	p.exchangeRules = []broker.Rule[record]{
		{Name: "split", Match: described(splitMarkers...), Apply: p.split},
		{Name: "withholding", Match: described(withholdingMarkers...), Apply: p.exchangeWithholding},
		{Name: "cash-movement", Match: described(cashMarkers...), Apply: p.exchangeCash},
		{Name: "exchange", Match: either(described(exchangeMarkers...), cusipSymbol), Apply: p.exchange},
	}
	return p
}

func ofKind(k actionKind) func(record) bool {
	return func(r record) bool { return r.action.Kind == k }
}

func described(markers ...string) func(record) bool {
	return func(r record) bool { return containsAny(r.raw.Description, markers...) }
}

// cusipSymbol accepts rows that move a security identified only by CUSIP.
func cusipSymbol(r record) bool { return isCUSIP(r.symbol) }

func either(a, b func(record) bool) func(record) bool {
	return func(r record) bool { return a(r) || b(r) }
}

// buildNameIndex maps company names to the first plain ticker seen for them.
func buildNameIndex(rows []record) map[string]string {
	names := make(map[string]string)
	for _, r := range rows {
		if !isPlainTicker(r.symbol) {
			continue
		}
		name := companyName(r.raw.Description)
		if name == "" {
			continue
		}
		if _, seen := names[name]; !seen {
			names[name] = r.symbol
		}
	}
	return names
}

func buildTaxIndex(rows []record) map[taxKey][]int {
	idx := make(map[taxKey][]int)
	for i, r := range rows {
		if !r.known || r.action.Kind != kindTaxWithholding {
			continue
		}
		k := keyOf(r)
		idx[k] = append(idx[k], i)
	}
	return idx
}

func keyOf(r record) taxKey {
	return taxKey{date: r.dateKey, symbol: r.symbol, issue: strings.TrimSpace(r.raw.ItemIssueID)}
}

func (p *pass) run() {
	for _, r := range p.rows {
		if !r.known || r.action.Kind == kindTaxWithholding || !r.action.ShouldImport {
			continue
		}
		broker.ApplyFirst(p.rules, r, p.out)
	}
	p.unpairedTax()
}

// base fills the fields every trade of a row shares.
func (p *pass) base(r record, t models.TradeType) models.Trade {
	note := strings.TrimSpace(r.raw.Description)
	if !r.fees.IsZero() {
		note += " (fees & comm " + r.fees.Abs().StringFixed(2) + ")"
	}
	return models.Trade{
		ID:          broker.TradeID(broker.Schwab, r.ordinal, r.source),
		Type:        t,
		Quantity:    decimal.Zero,
		Price:       decimal.Zero,
		TotalAmount: decimal.Zero,
		TradeDate:   r.date,
		Note:        note,
		RawSource:   r.source,
	}
}

func (p *pass) dividend(r record, out *broker.Emitter) {
	if r.amount.IsZero() || r.symbol == "" {
		return
	}

	gross := r.amount.Abs()
	tax := decimal.Zero
	source := r.source
	for _, j := range p.taxRows[keyOf(r)] {
		if p.consumed[j] {
			continue
		}
		p.consumed[j] = true
		tax = p.rows[j].amount.Abs()
		source += "\n" + p.rows[j].source
		break
	}

	info := &models.DividendInfo{Type: r.action.Dividend, GrossAmount: gross, TaxWithheld: tax}
	if issue := strings.TrimSpace(r.raw.ItemIssueID); issue != "" {
		info.IssueID = &issue
	}

	t := p.base(r, models.Dividend)
	t.Ticker = r.symbol
	t.Quantity = r.quantity.Abs()
	t.TotalAmount = info.NetAmount()
	t.DividendInfo = info
	t.RawSource = source
	out.Emit(t)
}

func (p *pass) option(r record, out *broker.Emitter) {
	info, ok := parseOptionSymbol(r.symbol)
	if !ok {
		out.Warnf("schwab: row %d: %s with unparseable option symbol %q dropped", r.ordinal, r.raw.Action, r.raw.Symbol)
		return
	}
	t := p.base(r, r.action.Type)
	t.Ticker = info.UnderlyingTicker
	t.Quantity = r.quantity.Abs()
	t.Price = r.price.Abs()
	t.TotalAmount = models.CashFlow(r.action.Type, r.amount)
	t.OptionInfo = &info
	out.Emit(t)
}

func (p *pass) split(r record, out *broker.Emitter) {
	if r.quantity.IsZero() {
		return
	}
	ticker, ok := p.resolveTicker(r, out)
	if !ok {
		return
	}
	t := p.base(r, models.StockBuy)
	t.Ticker = ticker
	t.Quantity = r.quantity.Abs()
	out.Emit(t)
}

func (p *pass) symbolExchange(r record, out *broker.Emitter) {
	broker.ApplyFirst(p.exchangeRules, r, out)
}

func (p *pass) exchangeWithholding(r record, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	ticker, ok := tickerInParens(r.raw.Description)
	if !ok && isPlainTicker(r.symbol) {
		ticker, ok = r.symbol, true
	}
	if !ok {
		return
	}
	out.Emit(p.withholdingTrade(r, ticker))
}

func (p *pass) exchangeCash(r record, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	typ := models.Deposit
	if r.amount.IsNegative() {
		typ = models.Withdraw
	}
	t := p.base(r, typ)
	if isPlainTicker(r.symbol) {
		t.Ticker = r.symbol
	}
	t.TotalAmount = models.CashFlow(typ, r.amount)
	out.Emit(t)
}

func (p *pass) exchange(r record, out *broker.Emitter) {
	ticker, ok := p.resolveTicker(r, out)
	if !ok || r.quantity.IsZero() {
		return
	}
	typ := models.SymbolExchangeIn
	if r.quantity.IsNegative() {
		typ = models.SymbolExchangeOut
	}
	t := p.base(r, typ)
	t.Ticker = ticker
	t.Quantity = r.quantity.Abs()
	t.Price = r.price.Abs()
	t.TotalAmount = models.CashFlow(typ, r.amount)
	out.Emit(t)
}

func (p *pass) cash(r record, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	typ := r.action.Type
	// Refunds and reversals move cash against the label's direction; the
	// sign wins and the row becomes a plain deposit or withdrawal.
	if r.action.BySign || models.CashFlow(typ, r.amount).Sign() != r.amount.Sign() {
		typ = models.Deposit
		if r.amount.IsNegative() {
			typ = models.Withdraw
		}
	}
	t := p.base(r, typ)
	if isPlainTicker(r.symbol) {
		t.Ticker = r.symbol
	}
	t.TotalAmount = models.CashFlow(typ, r.amount)
	if typ.Category() == models.CategoryFee {
		t.FeeInfo = &models.FeeInfo{Type: r.action.Fee, Amount: r.amount.Abs()}
	}
	out.Emit(t)
}

func (p *pass) adrFee(r record, out *broker.Emitter) {
	if r.amount.IsZero() {
		return
	}
	ticker := r.symbol
	if ticker == "" {
		var ok bool
		if ticker, ok = tickerInParens(r.raw.Description); !ok {
			return
		}
	}
	t := p.base(r, models.Fee)
	t.Ticker = ticker
	t.TotalAmount = models.CashFlow(models.Fee, r.amount)
	t.FeeInfo = &models.FeeInfo{Type: models.FeeAdrMgmt, Amount: r.amount.Abs()}
	out.Emit(t)
}

func (p *pass) stockTrade(r record, out *broker.Emitter) {
	ticker, ok := p.resolveTicker(r, out)
	if !ok {
		return
	}
	t := p.base(r, r.action.Type)
	t.Ticker = ticker
	t.Quantity = r.quantity.Abs()
	t.Price = r.price.Abs()
	t.TotalAmount = models.CashFlow(r.action.Type, r.amount)
	out.Emit(t)
}

// unpairedTax emits the withholding rows no dividend claimed.
func (p *pass) unpairedTax() {
	for i, r := range p.rows {
		if !r.known || r.action.Kind != kindTaxWithholding || p.consumed[i] || r.amount.IsZero() {
			continue
		}
		ticker := r.symbol
		if ticker == "" {
			ticker, _ = tickerInParens(r.raw.Description)
		}
		p.out.Emit(p.withholdingTrade(r, ticker))
	}
}

func (p *pass) withholdingTrade(r record, ticker string) models.Trade {
	t := p.base(r, models.TaxWithholding)
	t.Ticker = ticker
	t.TotalAmount = models.CashFlow(models.TaxWithholding, r.amount)
	t.FeeInfo = &models.FeeInfo{Type: models.FeeTaxWithholding, Amount: r.amount.Abs()}
	return t
}

// resolveTicker returns the row's ticker, translating a CUSIP through the
// company-name index. Unresolvable CUSIPs are reported and the row dropped.
func (p *pass) resolveTicker(r record, out *broker.Emitter) (string, bool) {
	if r.symbol == "" {
		return "", false
	}
	if !isCUSIP(r.symbol) {
		return r.symbol, true
	}
	if ticker, ok := p.names[companyName(r.raw.Description)]; ok {
		return ticker, true
	}
	out.Warnf("schwab: unresolved CUSIP %s (action=%q description=%q quantity=%q), row dropped",
		r.symbol, r.raw.Action, strings.TrimSpace(r.raw.Description), r.raw.Quantity)
	return "", false
}
