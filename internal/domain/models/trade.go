package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the canonical, broker-independent record every normalizer emits.
//
// Sign convention for TotalAmount (one convention for every broker):
//   - TotalAmount is the signed cash flow of the account.
//   - Positive when cash enters the account (sells, net dividends, deposits,
//     interest income).
//   - Negative when cash leaves it (buys, dividend reinvestments, fees,
//     withheld tax, withdrawals, margin interest).
//   - Symbol exchanges, option expirations and assignments carry the raw
//     signed amount reported by the broker (normally zero).
//
// Quantity is never negative; direction lives in Type.
//
// At most one of OptionInfo, DividendInfo and FeeInfo is set, and only when
// Type belongs to the matching Category.
type Trade struct {
	ID           string          `json:"id" yaml:"id"`
	Type         TradeType       `json:"type" yaml:"type"`
	Ticker       string          `json:"ticker" yaml:"ticker"`
	Quantity     decimal.Decimal `json:"quantity" yaml:"quantity"`
	Price        decimal.Decimal `json:"price" yaml:"price"`
	TotalAmount  decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	TradeDate    time.Time       `json:"trade_date" yaml:"trade_date"`
	OptionInfo   *OptionInfo     `json:"option_info,omitempty" yaml:"option_info,omitempty"`
	DividendInfo *DividendInfo   `json:"dividend_info,omitempty" yaml:"dividend_info,omitempty"`
	FeeInfo      *FeeInfo        `json:"fee_info,omitempty" yaml:"fee_info,omitempty"`
	Note         string          `json:"note" yaml:"note"`
	RawSource    string          `json:"raw_source" yaml:"raw_source"`
}

// Validation errors returned by Trade.Validate.
var (
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrMultipleInfo      = errors.New("at most one of option_info, dividend_info, fee_info may be set")
	ErrInfoTypeMismatch  = errors.New("info block does not match trade type")
	ErrDividendNet       = errors.New("dividend net amount does not match total amount")
	ErrNegativeInfoValue = errors.New("fee and dividend info amounts must not be negative")
	ErrUnknownType       = errors.New("unknown trade type")
)

// Validate checks the model invariants. Normalizers never emit a trade that
// fails it; callers building trades by hand can use it as a guard.
func (t Trade) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t.Type)
	}
	if t.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}

	set := 0
	if t.OptionInfo != nil {
		set++
		if t.Type.Category() != CategoryOption {
			return fmt.Errorf("%w: option_info on %s", ErrInfoTypeMismatch, t.Type)
		}
	}
	if t.DividendInfo != nil {
		set++
		if t.Type != Dividend {
			return fmt.Errorf("%w: dividend_info on %s", ErrInfoTypeMismatch, t.Type)
		}
		d := t.DividendInfo
		if d.GrossAmount.IsNegative() || d.TaxWithheld.IsNegative() {
			return ErrNegativeInfoValue
		}
		if !d.NetAmount().Equal(t.TotalAmount) {
			return fmt.Errorf("%w: net=%s total=%s", ErrDividendNet, d.NetAmount(), t.TotalAmount)
		}
	}
	if t.FeeInfo != nil {
		set++
		if t.Type.Category() != CategoryFee {
			return fmt.Errorf("%w: fee_info on %s", ErrInfoTypeMismatch, t.Type)
		}
		if t.FeeInfo.Amount.IsNegative() {
			return ErrNegativeInfoValue
		}
	}
	if set > 1 {
		return ErrMultipleInfo
	}
	return nil
}

// CashFlow applies the TotalAmount sign convention for the given type.
// Types without a fixed direction keep the amount as reported.
func CashFlow(t TradeType, amount decimal.Decimal) decimal.Decimal {
	switch t.cashDirection() {
	case inflow:
		return amount.Abs()
	case outflow:
		return amount.Abs().Neg()
	default:
		return amount
	}
}
