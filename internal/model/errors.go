package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrEmptySeries marks a zero-length input series. It is non-fatal: the
// simulation still returns (empty) outputs alongside it.
var ErrEmptySeries = errors.New("empty price series")

// ConfigError reports an invalid configuration value, detected at
// construction before any data is touched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// MissingFieldError reports an input series that lacks a required column.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("input series missing required field %q", e.Field)
}

// InvalidPriceError reports a non-positive close encountered mid-series.
// Fatal for that series only.
type InvalidPriceError struct {
	Index int
	Price decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("non-positive close %s at bar %d", e.Price, e.Index)
}
