package dto

import (
	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
)

// NormalizeResponse is returned by POST /api/v1/normalize/{broker}.
type NormalizeResponse struct {
	Broker   string         `json:"broker" example:"schwab"`
	Files    int            `json:"files" example:"1"`
	Trades   []models.Trade `json:"trades"`
	Warnings []string       `json:"warnings"`
}

// ImportResponse is returned by POST /api/v1/imports/{broker}.
type ImportResponse struct {
	Broker  string                `json:"broker" example:"firstrade"`
	Imports []models.ImportResult `json:"imports"`
}

// TradesResponse is returned by GET /api/v1/trades.
type TradesResponse struct {
	Count  int                  `json:"count" example:"2"`
	Trades []models.StoredTrade `json:"trades"`
}

// NewNormalizeResponse maps a parse result; slices are never nil so clients
// always see arrays.
func NewNormalizeResponse(name string, files int, res broker.Result) NormalizeResponse {
	out := NormalizeResponse{Broker: name, Files: files, Trades: res.Trades, Warnings: res.Warnings}
	if out.Trades == nil {
		out.Trades = []models.Trade{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return out
}

func NewTradesResponse(trades []models.StoredTrade) TradesResponse {
	if trades == nil {
		trades = []models.StoredTrade{}
	}
	return TradesResponse{Count: len(trades), Trades: trades}
}
