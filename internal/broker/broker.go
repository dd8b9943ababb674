// Package broker holds the pieces every broker normalizer shares: the
// Normalizer contract, decode errors, the ordered rule table, the warning
// accumulator and the deterministic output ordering.
//
// Normalizers are pure: a parse call decodes its input, builds whatever
// lookup tables it needs, classifies rows and returns. No state survives the
// call, so calls on different inputs can run concurrently without locking.
package broker

import (
	"errors"
	"fmt"

	"github.com/guttosm/tradenorm/internal/domain/models"
)

// Name identifies a supported broker export format.
type Name string

const (
	Schwab    Name = "schwab"
	Firstrade Name = "firstrade"
)

// Result is the output of one parse call. Warnings are human-readable and
// never abort the call.
type Result struct {
	Trades   []models.Trade `json:"trades" yaml:"trades"`
	Warnings []string       `json:"warnings" yaml:"warnings"`
}

// Normalizer turns one broker's export bytes into canonical trades.
//
// Parse and ParseWithWarnings fail only when the container itself cannot be
// decoded (see DecodeError). ParseFiles decodes every file first and runs a
// single classification pass over the concatenated rows, in file-then-row
// order, so cross-file lookups (CUSIP resolution) see every row.
type Normalizer interface {
	Name() Name
	Parse(data []byte) ([]models.Trade, error)
	ParseWithWarnings(data []byte) (Result, error)
	ParseFiles(files ...[]byte) (Result, error)
}

// ErrorKind tells container-level failures apart.
type ErrorKind string

const (
	KindInvalidContainer ErrorKind = "invalid-container"
	KindInvalidHeader    ErrorKind = "invalid-header"
)

// Sentinels matched by DecodeError.Is.
var (
	ErrInvalidContainer = errors.New("invalid container")
	ErrInvalidHeader    = errors.New("invalid header")
)

// DecodeError is the only error a parse call returns.
type DecodeError struct {
	Broker Name
	Kind   ErrorKind
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Broker, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrInvalidContainer:
		return e.Kind == KindInvalidContainer
	case ErrInvalidHeader:
		return e.Kind == KindInvalidHeader
	}
	return false
}

// ContainerError builds a DecodeError of kind invalid-container.
func ContainerError(b Name, format string, args ...any) error {
	return &DecodeError{Broker: b, Kind: KindInvalidContainer, Err: fmt.Errorf(format, args...)}
}

// HeaderError builds a DecodeError of kind invalid-header.
func HeaderError(b Name, format string, args ...any) error {
	return &DecodeError{Broker: b, Kind: KindInvalidHeader, Err: fmt.Errorf(format, args...)}
}
