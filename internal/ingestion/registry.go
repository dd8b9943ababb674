package ingestion

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/broker/firstrade"
	"github.com/guttosm/tradenorm/internal/broker/schwab"
)

// ErrUnknownBroker is returned for broker names without a normalizer.
var ErrUnknownBroker = errors.New("unknown broker")

var registry = map[broker.Name]func() broker.Normalizer{
	broker.Schwab:    func() broker.Normalizer { return schwab.New() },
	broker.Firstrade: func() broker.Normalizer { return firstrade.New() },
}

// GetNormalizer returns the normalizer for a broker name (case-insensitive).
func GetNormalizer(name string) (broker.Normalizer, error) {
	ctor, ok := registry[broker.Name(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownBroker, name, strings.Join(SupportedBrokers(), ", "))
	}
	return ctor(), nil
}

// SupportedBrokers lists the registered broker names in sorted order.
func SupportedBrokers() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}
