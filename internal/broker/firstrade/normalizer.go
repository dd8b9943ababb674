// Package firstrade normalizes Firstrade account-history CSV exports.
package firstrade

import (
	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
)

// Normalizer implements broker.Normalizer for Firstrade exports.
type Normalizer struct{}

// New returns a Firstrade normalizer.
func New() *Normalizer { return &Normalizer{} }

func (n *Normalizer) Name() broker.Name { return broker.Firstrade }

func (n *Normalizer) Parse(data []byte) ([]models.Trade, error) {
	res, err := n.ParseWithWarnings(data)
	if err != nil {
		return nil, err
	}
	return res.Trades, nil
}

func (n *Normalizer) ParseWithWarnings(data []byte) (broker.Result, error) {
	return n.ParseFiles(data)
}

// ParseFiles validates every file's header before classifying any row; one
// bad header rejects the whole call.
func (n *Normalizer) ParseFiles(files ...[]byte) (broker.Result, error) {
	out := &broker.Emitter{}
	var rows []row
	offset := 0
	for _, data := range files {
		decoded, consumed, err := decode(data, offset, out)
		if err != nil {
			return broker.Result{}, err
		}
		rows = append(rows, decoded...)
		offset += consumed
	}

	for _, r := range rows {
		broker.ApplyFirst(rules, r, out)
	}
	return out.Result(), nil
}
