package models

// TradeType is the closed set of canonical trade categories.
type TradeType string

const (
	StockBuy          TradeType = "STOCK_BUY"
	StockSell         TradeType = "STOCK_SELL"
	OptionBuy         TradeType = "OPTION_BUY"
	OptionSell        TradeType = "OPTION_SELL"
	OptionBuyToOpen   TradeType = "OPTION_BUY_TO_OPEN"
	OptionBuyToClose  TradeType = "OPTION_BUY_TO_CLOSE"
	OptionSellToOpen  TradeType = "OPTION_SELL_TO_OPEN"
	OptionSellToClose TradeType = "OPTION_SELL_TO_CLOSE"
	Dividend          TradeType = "DIVIDEND"
	DividendReinvest  TradeType = "DIVIDEND_REINVEST"
	SymbolExchangeIn  TradeType = "SYMBOL_EXCHANGE_IN"
	SymbolExchangeOut TradeType = "SYMBOL_EXCHANGE_OUT"
	OptionExpiration  TradeType = "OPTION_EXPIRATION"
	OptionAssignment  TradeType = "OPTION_ASSIGNMENT"
	Fee               TradeType = "FEE"
	Deposit           TradeType = "DEPOSIT"
	Withdraw          TradeType = "WITHDRAW"
	InterestIncome    TradeType = "INTEREST_INCOME"
	MarginInterest    TradeType = "MARGIN_INTEREST"
	TaxWithholding    TradeType = "TAX_WITHHOLDING"
)

// Category groups trade types that share an info block.
type Category int

const (
	CategoryOther Category = iota
	CategoryStock
	CategoryOption
	CategoryDividend
	CategoryFee
	CategoryCash
)

type direction int

const (
	asReported direction = iota
	inflow
	outflow
)

type typeTraits struct {
	category Category
	buy      bool
	sell     bool
	opens    bool
	closes   bool
	cash     direction
}

var traits = map[TradeType]typeTraits{
	StockBuy:          {category: CategoryStock, buy: true, opens: true, cash: outflow},
	StockSell:         {category: CategoryStock, sell: true, closes: true, cash: inflow},
	OptionBuy:         {category: CategoryOption, buy: true, cash: outflow},
	OptionSell:        {category: CategoryOption, sell: true, cash: inflow},
	OptionBuyToOpen:   {category: CategoryOption, buy: true, opens: true, cash: outflow},
	OptionBuyToClose:  {category: CategoryOption, buy: true, closes: true, cash: outflow},
	OptionSellToOpen:  {category: CategoryOption, sell: true, opens: true, cash: inflow},
	OptionSellToClose: {category: CategoryOption, sell: true, closes: true, cash: inflow},
	Dividend:          {category: CategoryDividend, cash: inflow},
	DividendReinvest:  {category: CategoryDividend, buy: true, opens: true, cash: outflow},
	SymbolExchangeIn:  {category: CategoryStock, buy: true, opens: true},
	SymbolExchangeOut: {category: CategoryStock, sell: true, closes: true},
	OptionExpiration:  {category: CategoryOption, closes: true},
	OptionAssignment:  {category: CategoryOption, closes: true},
	Fee:               {category: CategoryFee, cash: outflow},
	Deposit:           {category: CategoryCash, cash: inflow},
	Withdraw:          {category: CategoryCash, cash: outflow},
	InterestIncome:    {category: CategoryCash, cash: inflow},
	MarginInterest:    {category: CategoryCash, cash: outflow},
	TaxWithholding:    {category: CategoryFee, cash: outflow},
}

// AllTradeTypes lists every type in declaration order.
var AllTradeTypes = []TradeType{
	StockBuy, StockSell,
	OptionBuy, OptionSell, OptionBuyToOpen, OptionBuyToClose, OptionSellToOpen, OptionSellToClose,
	Dividend, DividendReinvest,
	SymbolExchangeIn, SymbolExchangeOut,
	OptionExpiration, OptionAssignment,
	Fee, Deposit, Withdraw, InterestIncome, MarginInterest, TaxWithholding,
}

// Valid reports whether t is one of the declared types.
func (t TradeType) Valid() bool {
	_, ok := traits[t]
	return ok
}

func (t TradeType) Category() Category { return traits[t].category }

// IsBuy reports whether the type acquires a position or pays for one.
func (t TradeType) IsBuy() bool { return traits[t].buy }

// IsSell reports whether the type disposes of a position or is paid for one.
func (t TradeType) IsSell() bool { return traits[t].sell }

func (t TradeType) IsOption() bool { return traits[t].category == CategoryOption }

func (t TradeType) OpensPosition() bool { return traits[t].opens }

func (t TradeType) ClosesPosition() bool { return traits[t].closes }

// IsCashTransfer reports deposits and withdrawals: money moving between the
// account and the outside world.
func (t TradeType) IsCashTransfer() bool { return t == Deposit || t == Withdraw }

// SortPriority orders same-day trades: buys (0), sells (1), everything else (2).
func (t TradeType) SortPriority() int {
	switch {
	case t.IsBuy():
		return 0
	case t.IsSell():
		return 1
	default:
		return 2
	}
}

func (t TradeType) cashDirection() direction { return traits[t].cash }
