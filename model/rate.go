package model

import "time"

// ExchangeRate is a row from the historical exchange-rate table. The table
// is populated by an external daily sync; the match engine only reads it.
type ExchangeRate struct {
	ID           int64     `json:"-"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// RateInfo is a resolved rate for a (from, to, date) lookup. IsExact reports
// whether the rate is from the requested date or a nearby fallback date.
type RateInfo struct {
	Rate    float64   `json:"rate"`
	Date    time.Time `json:"date"`
	IsExact bool      `json:"is_exact"`
}

// ConversionRequest is one entry in a batch conversion.
type ConversionRequest struct {
	Amount       float64   `json:"amount"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Date         time.Time `json:"date"`
}

// ConversionResult describes a completed currency conversion, including how
// far the rate date drifted from the transaction date.
type ConversionResult struct {
	ConvertedAmount float64   `json:"converted_amount"`
	Rate            float64   `json:"rate"`
	RateDate        time.Time `json:"rate_date"`
	IsExactRate     bool      `json:"is_exact_rate"`
	RateDaysDiff    int       `json:"rate_days_diff"`
	FromCurrency    string    `json:"from_currency"`
	ToCurrency      string    `json:"to_currency"`
	OriginalAmount  float64   `json:"original_amount"`
}
