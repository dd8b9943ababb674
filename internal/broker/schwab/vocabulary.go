package schwab

import "github.com/guttosm/tradenorm/internal/domain/models"

// actionKind selects the classification rule a row goes through.
type actionKind int

const (
	kindTrade actionKind = iota + 1
	kindOption
	kindDividend
	kindTaxWithholding
	kindSplit
	kindSymbolExchange
	kindCashTable
	kindAdrFee
)

// actionInfo is what the vocabulary knows about one Schwab action label.
type actionInfo struct {
	Type         models.TradeType
	Kind         actionKind
	Dividend     models.DividendType
	Fee          models.FeeType
	ShouldImport bool
	// BySign marks cash labels used for both directions; the amount sign
	// picks Deposit or Withdraw.
	BySign bool
}

func (a actionInfo) IsOptionTrade() bool    { return a.Kind == kindOption }
func (a actionInfo) IsDividend() bool       { return a.Kind == kindDividend }
func (a actionInfo) IsSymbolExchange() bool { return a.Kind == kindSymbolExchange }
func (a actionInfo) IsBuyAction() bool      { return a.Type.IsBuy() }
func (a actionInfo) IsSellAction() bool     { return a.Type.IsSell() }
func (a actionInfo) OpensPosition() bool    { return a.Type.OpensPosition() }
func (a actionInfo) ClosesPosition() bool   { return a.Type.ClosesPosition() }

func trade(t models.TradeType) actionInfo {
	return actionInfo{Type: t, Kind: kindTrade, ShouldImport: true}
}

func option(t models.TradeType) actionInfo {
	return actionInfo{Type: t, Kind: kindOption, ShouldImport: true}
}

func dividend(dt models.DividendType) actionInfo {
	return actionInfo{Type: models.Dividend, Kind: kindDividend, Dividend: dt, ShouldImport: true}
}

func cash(t models.TradeType) actionInfo {
	a := actionInfo{Type: t, Kind: kindCashTable, ShouldImport: true}
	switch t {
	case models.Fee:
		a.Fee = models.FeeOther
	case models.TaxWithholding:
		a.Fee = models.FeeTaxWithholding
	}
	return a
}

func cashBySign() actionInfo {
	a := cash(models.Deposit)
	a.BySign = true
	return a
}

var (
	withholding    = actionInfo{Type: models.TaxWithholding, Kind: kindTaxWithholding, Fee: models.FeeTaxWithholding, ShouldImport: true}
	symbolExchange = actionInfo{Type: models.SymbolExchangeIn, Kind: kindSymbolExchange, ShouldImport: true}
	ignored        = actionInfo{}
)

// vocabulary maps the exact, case-sensitive action labels of the Schwab
// brokerage export. Labels absent from the table are dropped.
var vocabulary = map[string]actionInfo{
	"Buy":             trade(models.StockBuy),
	"Sell":            trade(models.StockSell),
	"Reinvest Shares": trade(models.StockBuy),

	"Buy to Open":   option(models.OptionBuyToOpen),
	"Buy to Close":  option(models.OptionBuyToClose),
	"Sell to Open":  option(models.OptionSellToOpen),
	"Sell to Close": option(models.OptionSellToClose),
	"Expired":       option(models.OptionExpiration),
	"Assigned":      option(models.OptionAssignment),

	"Qualified Dividend":  dividend(models.DividendQualified),
	"Cash Dividend":       dividend(models.DividendOrdinary),
	"Non-Qualified Div":   dividend(models.DividendOrdinary),
	"Special Dividend":    dividend(models.DividendOrdinary),
	"Pr Yr Cash Div":      dividend(models.DividendOrdinary),
	"Pr Yr Non-Qual Div":  dividend(models.DividendOrdinary),
	"Long Term Cap Gain":  dividend(models.DividendCapitalGain),
	"Short Term Cap Gain": dividend(models.DividendCapitalGain),
	"Qual Div Reinvest":   dividend(models.DividendReinvested),
	"Reinvest Dividend":   dividend(models.DividendReinvested),
	"Pr Yr Div Reinvest":  dividend(models.DividendReinvested),

	"NRA Tax Adj":      withholding,
	"NRA Withholding":  withholding,
	"Pr Yr NRA Tax":    withholding,
	"Foreign Tax Paid": withholding,

	"Stock Split": {Type: models.StockBuy, Kind: kindSplit, ShouldImport: true},

	"Delivered - Other": symbolExchange,
	"Journaled Shares":  symbolExchange,
	"Stock Merger":      symbolExchange,

	"MoneyLink Deposit":       cash(models.Deposit),
	"Wire Received":           cash(models.Deposit),
	"Funds Received":          cash(models.Deposit),
	"Wire Sent":               cash(models.Withdraw),
	"MoneyLink Transfer":      cashBySign(),
	"Wire Funds":              cashBySign(),
	"Journal":                 cashBySign(),
	"Misc Cash Entry":         cashBySign(),
	"Bank Interest":           cash(models.InterestIncome),
	"Credit Interest":         cash(models.InterestIncome),
	"Bond Interest":           cash(models.InterestIncome),
	"Margin Interest":         cash(models.MarginInterest),
	"Service Fee":             cash(models.Fee),
	"Backup Withholding":      cash(models.TaxWithholding),
	"State Tax Withholding":   cash(models.TaxWithholding),
	"ADR Mgmt Fee":            {Type: models.Fee, Kind: kindAdrFee, Fee: models.FeeAdrMgmt, ShouldImport: true},
	"Cash In Lieu":            ignored,
	"Internal Transfer":       ignored,
	"Exchange or Exercise":    ignored,
	"Spin-off":                ignored,
	"Name Change":             ignored,
	"Security Transfer":       ignored,
	"Bank Transfer":           ignored,
	"Cash Management Sweep":   ignored,
	"Money Market Reinvest":   ignored,
	"Auto S1 Debit":           ignored,
	"Auto S1 Credit":          ignored,
	"Pr Yr Special Div":       dividend(models.DividendOrdinary),
	"Div Adjustment":          ignored,
	"Wire Funds Adj":          ignored,
	"Foreign Tax Reclaim":     ignored,
	"Non-Taxable Dividend":    ignored,
	"Return Of Capital":       ignored,
	"Mandatory Reorg Exc":     ignored,
	"Corporate Action Credit": ignored,
}

// lookupAction returns the vocabulary entry for label and whether it exists.
func lookupAction(label string) (actionInfo, bool) {
	a, ok := vocabulary[label]
	return a, ok
}
