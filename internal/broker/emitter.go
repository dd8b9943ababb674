package broker

import (
	"fmt"
	"sort"

	"github.com/guttosm/tradenorm/internal/domain/models"
)

// Emitter accumulates the trades and warnings of a single parse call.
// It is never shared between calls.
type Emitter struct {
	trades   []models.Trade
	warnings []string
}

// Emit appends a trade.
func (e *Emitter) Emit(t models.Trade) {
	e.trades = append(e.trades, t)
}

// Warnf appends a formatted warning.
func (e *Emitter) Warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

// Result sorts the emitted trades and returns them with the warnings.
// Both slices are non-nil so an empty parse serialises as [] rather than null.
func (e *Emitter) Result() Result {
	trades := e.trades
	if trades == nil {
		trades = []models.Trade{}
	}
	warnings := e.warnings
	if warnings == nil {
		warnings = []string{}
	}
	SortTrades(trades)
	return Result{Trades: trades, Warnings: warnings}
}

// SortTrades orders trades by trade date, then buys before sells before
// everything else. The sort is stable, so rows that tie keep input order.
func SortTrades(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if !a.TradeDate.Equal(b.TradeDate) {
			return a.TradeDate.Before(b.TradeDate)
		}
		return a.Type.SortPriority() < b.Type.SortPriority()
	})
}
