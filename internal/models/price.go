package models

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price limits: two fraction digits and at most five integer digits
const (
	PriceDecimalPlaces = 2
	PriceIntegerDigits = 5
)

var (
	ErrPriceFormat    = errors.New("a valid number is required")
	ErrPricePlaces    = fmt.Errorf("ensure that there are no more than %d decimal places", PriceDecimalPlaces)
	ErrPriceDigits    = fmt.Errorf("ensure that there are no more than %d digits before the decimal point", PriceIntegerDigits)
	ErrPriceNegative  = errors.New("ensure this value is greater than or equal to 0")
	maxPriceExclusive = decimal.New(1, PriceIntegerDigits)
)

// Price is a non-negative monetary amount with exactly two decimal places
type Price struct {
	decimal.Decimal
}

// ParsePrice parses and validates a decimal string such as "34.00" or "5".
// Written fraction digits count, so "34.000" is rejected like "34.001".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, ErrPriceFormat
	}
	if d.Exponent() < -PriceDecimalPlaces {
		return Price{}, ErrPricePlaces
	}
	if d.IsNegative() {
		return Price{}, ErrPriceNegative
	}
	if d.GreaterThanOrEqual(maxPriceExclusive) {
		return Price{}, ErrPriceDigits
	}
	return Price{d.Round(PriceDecimalPlaces)}, nil
}

// MustPrice is ParsePrice for constants in seeds and tests.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the price with two decimals.
func (p Price) String() string {
	return p.StringFixed(PriceDecimalPlaces)
}

// MarshalJSON renders the price as a JSON string, e.g. "34.00".
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner. SQLite may hand back integers or floats for NUMERIC columns.
func (p *Price) Scan(value interface{}) error {
	if err := p.Decimal.Scan(value); err != nil {
		return err
	}
	p.Decimal = p.Decimal.Round(PriceDecimalPlaces)
	return nil
}
