// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNegativeValue       = errors.New("negative value")
	ErrOutOfDomain         = errors.New("value out of domain")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrInvalidStrike       = errors.New("invalid strike")
	ErrInvalidVolatility   = errors.New("invalid volatility")
	ErrInvalidExpiration   = errors.New("invalid expiration")
	ErrInvalidExoticParams = errors.New("invalid exotic parameters")
	ErrInvalidStyleSide    = errors.New("invalid style or side")
	ErrInvalidFees         = errors.New("invalid fees")
	ErrInvalidPremium      = errors.New("invalid premium")
	ErrZeroVega            = errors.New("vega too small for newton step")
	ErrNoPositions         = errors.New("strategy has no positions")
	ErrPositionNotFound    = errors.New("position not found")
	ErrStrikeExists        = errors.New("strike already present in chain")
	ErrEmptyChain          = errors.New("option chain is empty")
	ErrDataNotFound        = errors.New("data not found")
	ErrDatabaseError       = errors.New("database error")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrSimulationCancelled = errors.New("simulation cancelled")
	ErrInsufficientData    = errors.New("insufficient data")
)

// InvalidLegsError reports a strategy whose legs do not match the
// pattern required by its kind.
type InvalidLegsError struct {
	Kind     string
	Expected string
	Found    string
	Reason   string
}

func (e *InvalidLegsError) Error() string {
	return fmt.Sprintf("invalid legs for %s: expected %s, found %s: %s", e.Kind, e.Expected, e.Found, e.Reason)
}

// NewInvalidLegsError creates a new InvalidLegsError.
func NewInvalidLegsError(kind, expected, found, reason string) *InvalidLegsError {
	return &InvalidLegsError{
		Kind:     kind,
		Expected: expected,
		Found:    found,
		Reason:   reason,
	}
}

// InvalidCombinationError reports a strategy combination that cannot be built.
type InvalidCombinationError struct {
	Kind   string
	Reason string
}

func (e *InvalidCombinationError) Error() string {
	return fmt.Sprintf("invalid combination [%s]: %s", e.Kind, e.Reason)
}

// PricingError represents a pricing method failure.
type PricingError struct {
	Method string
	Reason string
	Err    error
}

func (e *PricingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pricing error [%s]: %s: %v", e.Method, e.Reason, e.Err)
	}
	return fmt.Sprintf("pricing error [%s]: %s", e.Method, e.Reason)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

// NewPricingError creates a new PricingError.
func NewPricingError(method, reason string, err error) *PricingError {
	return &PricingError{
		Method: method,
		Reason: reason,
		Err:    err,
	}
}

// SimulationError represents a simulation failure.
type SimulationError struct {
	Reason string
	Err    error
}

func (e *SimulationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("simulation error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("simulation error: %s", e.Reason)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// GreeksError represents a Greeks calculation failure.
type GreeksError struct {
	Kind   string // "input" or "calculation"
	Reason string
}

func (e *GreeksError) Error() string {
	return fmt.Sprintf("greeks error [%s]: %s", e.Kind, e.Reason)
}

// NoConvergenceError reports an implied-volatility solver that exhausted
// its iteration budget.
type NoConvergenceError struct {
	Iterations int
	LastSigma  float64
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("implied volatility did not converge after %d iterations (last sigma: %.6f)", e.Iterations, e.LastSigma)
}

// InvalidPriceError reports a market price outside the no-arbitrage band.
type InvalidPriceError struct {
	Price  float64
	Reason string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %.6f: %s", e.Price, e.Reason)
}

// InvalidTimeError reports a non-positive or otherwise unusable expiry.
type InvalidTimeError struct {
	Time   float64
	Reason string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %.6f: %s", e.Time, e.Reason)
}

// ChainError represents an option-chain build or I/O failure.
type ChainError struct {
	Kind    string // "option_data", "build", "file", "strategy"
	Symbol  string
	Message string
	Err     error
}

func (e *ChainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chain error [%s] %s: %s: %v", e.Kind, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("chain error [%s] %s: %s", e.Kind, e.Symbol, e.Message)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// NewChainError creates a new ChainError.
func NewChainError(kind, symbol, message string, err error) *ChainError {
	return &ChainError{
		Kind:    kind,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// MetricsError represents a failure in a curve, surface or series container.
type MetricsError struct {
	Container string // "curve", "surface", "series", "interpolation"
	Reason    string
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error [%s]: %s", e.Container, e.Reason)
}

// TransactionError represents an invalid operation on the audit log.
type TransactionError struct {
	Status string
	Reason string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error [%s]: %s", e.Status, e.Reason)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
