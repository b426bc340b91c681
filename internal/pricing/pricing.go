// Package pricing computes booking quotes on the server so that stored
// totals never depend on what a client sends.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gowheels/internal/models"
)

const (
	InsurancePerDay = 500.0
	DriverPerDay    = 300.0
	ChildSeatPerDay = 100.0

	DefaultTaxRate           = 18.0
	DefaultDepositPercentage = 30.0
	DefaultMaxBookingDays    = 30

	// Tolerance is the largest difference accepted between a client total
	// and the server total.
	Tolerance = 0.01
)

var (
	ErrInvalidDate      = errors.New("dates must be YYYY-MM-DD or RFC3339")
	ErrInvalidDateRange = errors.New("return date must be after pickup date")
	ErrTooLong          = errors.New("booking exceeds the maximum number of days")
)

// Rates are the platform settings that feed a quote. Percentages are whole
// numbers (18 means 18%).
type Rates struct {
	TaxRate           float64
	DepositPercentage float64
	MaxBookingDays    int
}

func DefaultRates() Rates {
	return Rates{
		TaxRate:           DefaultTaxRate,
		DepositPercentage: DefaultDepositPercentage,
		MaxBookingDays:    DefaultMaxBookingDays,
	}
}

// RatesFromSettings overlays admin settings on the defaults. Unparseable or
// negative values keep the default.
func RatesFromSettings(settings map[string]string) Rates {
	r := DefaultRates()
	if v, err := strconv.ParseFloat(strings.TrimSpace(settings[models.SettingTaxRate]), 64); err == nil && v >= 0 {
		r.TaxRate = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(settings[models.SettingDepositPercentage]), 64); err == nil && v >= 0 {
		r.DepositPercentage = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(settings[models.SettingMaxBookingDays])); err == nil && v > 0 {
		r.MaxBookingDays = v
	}
	return r
}

type Extras struct {
	Insurance bool `json:"insurance"`
	Driver    bool `json:"driver"`
	ChildSeat bool `json:"childSeat"`
}

// Quote is a full price breakdown. Money values are rounded to paise.
type Quote struct {
	Days          int     `json:"days"`
	PricePerDay   float64 `json:"pricePerDay"`
	BasePrice     float64 `json:"basePrice"`
	ExtrasPrice   float64 `json:"extrasPrice"`
	Subtotal      float64 `json:"subtotal"`
	Taxes         float64 `json:"taxes"`
	TotalAmount   float64 `json:"totalAmount"`
	DepositAmount float64 `json:"depositAmount"`
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Days is the number of started 24h periods between pickup and return.
func Days(pickup, ret time.Time) int {
	return int(math.Ceil(ret.Sub(pickup).Hours() / 24))
}

// Calculate prices a rental of a vehicle costing pricePerDay.
func Calculate(pricePerDay float64, pickup, ret time.Time, extras Extras, rates Rates) (Quote, error) {
	if !ret.After(pickup) {
		return Quote{}, ErrInvalidDateRange
	}
	days := Days(pickup, ret)
	if days < 1 {
		days = 1
	}
	if rates.MaxBookingDays > 0 && days > rates.MaxBookingDays {
		return Quote{}, fmt.Errorf("%w (%d > %d)", ErrTooLong, days, rates.MaxBookingDays)
	}

	perDayExtras := 0.0
	if extras.Insurance {
		perDayExtras += InsurancePerDay
	}
	if extras.Driver {
		perDayExtras += DriverPerDay
	}
	if extras.ChildSeat {
		perDayExtras += ChildSeatPerDay
	}

	q := Quote{Days: days, PricePerDay: pricePerDay}
	q.BasePrice = Round(pricePerDay * float64(days))
	q.ExtrasPrice = Round(perDayExtras * float64(days))
	q.Subtotal = Round(q.BasePrice + q.ExtrasPrice)
	q.Taxes = Round(q.Subtotal * rates.TaxRate / 100)
	q.TotalAmount = Round(q.Subtotal + q.Taxes)
	q.DepositAmount = Round(q.TotalAmount * rates.DepositPercentage / 100)
	return q, nil
}

// Matches reports whether a client-provided total agrees with the quote.
func (q Quote) Matches(clientTotal float64) bool {
	return math.Abs(q.TotalAmount-clientTotal) <= Tolerance+1e-9
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Money formats v as a decimal string with two places.
func Money(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', 2, 64)
}

// ParseMoney reads a decimal string such as "5900.00".
func ParseMoney(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Paise converts a rupee amount to the gateway's integer minor unit.
func Paise(v float64) int64 {
	return int64(math.Round(v * 100))
}
