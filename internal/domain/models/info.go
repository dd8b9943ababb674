package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType is the right an option contract grants.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// OptionInfo describes the contract behind an option trade. It is always
// derived from a broker's contract descriptor string.
type OptionInfo struct {
	UnderlyingTicker string          `json:"underlying_ticker" yaml:"underlying_ticker"`
	OptionType       OptionType      `json:"option_type" yaml:"option_type"`
	StrikePrice      decimal.Decimal `json:"strike_price" yaml:"strike_price"`
	ExpirationDate   time.Time       `json:"expiration_date" yaml:"expiration_date"`
}

// DividendType distinguishes dividend tax treatment.
type DividendType string

const (
	DividendQualified   DividendType = "QUALIFIED"
	DividendOrdinary    DividendType = "ORDINARY"
	DividendCapitalGain DividendType = "CAPITAL_GAIN"
	DividendReinvested  DividendType = "REINVEST"
)

// DividendInfo carries the gross/withheld split of a dividend. The owning
// trade's TotalAmount always equals NetAmount().
type DividendInfo struct {
	Type        DividendType    `json:"type" yaml:"type"`
	GrossAmount decimal.Decimal `json:"gross_amount" yaml:"gross_amount"`
	TaxWithheld decimal.Decimal `json:"tax_withheld" yaml:"tax_withheld"`
	IssueID     *string         `json:"issue_id,omitempty" yaml:"issue_id,omitempty"`
}

// NetAmount is GrossAmount minus TaxWithheld.
func (d DividendInfo) NetAmount() decimal.Decimal {
	return d.GrossAmount.Sub(d.TaxWithheld)
}

// FeeType classifies fee-like outflows.
type FeeType string

const (
	FeeAdrMgmt            FeeType = "ADR_MGMT_FEE"
	FeeTradingCommission  FeeType = "TRADING_COMMISSION"
	FeeTaxWithholding     FeeType = "TAX_WITHHOLDING"
	FeeWire               FeeType = "WIRE_FEE"
	FeeAch                FeeType = "ACH_FEE"
	FeeForeignTransaction FeeType = "FOREIGN_TRANSACTION_FEE"
	FeeOther              FeeType = "OTHER"
)

// FeeInfo carries the unsigned fee amount.
type FeeInfo struct {
	Type   FeeType         `json:"type" yaml:"type"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}
