/*
Copyright 2024 Ledgermatch Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ledgermatch

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ledgermatch/ledgermatch/model"
)

// RateSource is the narrow contract the converter needs from the historical
// exchange-rate store. All three lookups return (nil, nil) when no rate row
// exists; an error means the store itself failed.
type RateSource interface {
	// GetRate fetches the rate for the exact date.
	GetRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error)
	// GetNearestRateBefore fetches the most recent rate in [earliest, date).
	GetNearestRateBefore(ctx context.Context, fromCurrency, toCurrency string, date, earliest time.Time) (*model.RateInfo, error)
	// GetNearestRateAfter fetches the earliest rate in (date, latest].
	GetNearestRateAfter(ctx context.Context, fromCurrency, toCurrency string, date, latest time.Time) (*model.RateInfo, error)
}

// ConversionConfig controls the fallback search for historical rates.
type ConversionConfig struct {
	MaxDaysBack      int  // how far back to search for an approximate rate (default 30)
	AllowApproximate bool // permit non-exact-date rates (default true)
}

// DefaultConversionConfig returns the documented defaults.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{MaxDaysBack: 30, AllowApproximate: true}
}

const rateForwardSearchDays = 7

// Converter resolves historical exchange rates and converts amounts for
// cross-currency comparisons. It only ever reads rates; ingestion is an
// external job.
type Converter struct {
	rates RateSource
	cfg   ConversionConfig
}

// NewConverter wires a converter to a rate source.
func NewConverter(rates RateSource, cfg ConversionConfig) *Converter {
	return &Converter{rates: rates, cfg: cfg}
}

// GetExchangeRate resolves a rate for a (from, to, date) triple. Same
// currency short-circuits to rate 1. Otherwise it tries the exact date,
// then searches backward up to MaxDaysBack preferring the most recent
// earlier date, then forward up to seven days. A missing rate is reported
// as (nil, nil), never as an error.
func (c *Converter) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error) {
	if strings.EqualFold(fromCurrency, toCurrency) {
		return &model.RateInfo{Rate: 1, Date: NormalizeToMidnight(date), IsExact: true}, nil
	}

	from := strings.ToUpper(fromCurrency)
	to := strings.ToUpper(toCurrency)
	day := NormalizeToMidnight(date)

	exact, err := c.rates.GetRate(ctx, from, to, day)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		return exact, nil
	}

	if !c.cfg.AllowApproximate {
		return nil, nil
	}

	earliest := day.AddDate(0, 0, -c.cfg.MaxDaysBack)
	before, err := c.rates.GetNearestRateBefore(ctx, from, to, day, earliest)
	if err != nil {
		return nil, err
	}
	if before != nil {
		return before, nil
	}

	latest := day.AddDate(0, 0, rateForwardSearchDays)
	after, err := c.rates.GetNearestRateAfter(ctx, from, to, day, latest)
	if err != nil {
		return nil, err
	}
	return after, nil
}

// Convert converts an amount between currencies at the transaction date.
// Returns (nil, nil) when no usable rate exists.
func (c *Converter) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string, date time.Time) (*model.ConversionResult, error) {
	rateInfo, err := c.GetExchangeRate(ctx, fromCurrency, toCurrency, date)
	if err != nil {
		return nil, err
	}
	if rateInfo == nil {
		return nil, nil
	}

	return &model.ConversionResult{
		ConvertedAmount: amount * rateInfo.Rate,
		Rate:            rateInfo.Rate,
		RateDate:        rateInfo.Date,
		IsExactRate:     rateInfo.IsExact,
		RateDaysDiff:    CalculateDaysDiff(date, rateInfo.Date),
		FromCurrency:    strings.ToUpper(fromCurrency),
		ToCurrency:      strings.ToUpper(toCurrency),
		OriginalAmount:  amount,
	}, nil
}

// ConvertBatch converts a list of amounts, deduplicating identical
// (from, to, date) lookups through an in-memory cache scoped to the batch.
// Entries with no usable rate come back nil; a store failure aborts the
// batch since every remaining lookup would hit the same store.
func (c *Converter) ConvertBatch(ctx context.Context, requests []model.ConversionRequest) ([]*model.ConversionResult, error) {
	results := make([]*model.ConversionResult, len(requests))
	rateCache := make(map[string]*model.RateInfo)

	for i, req := range requests {
		key := rateCacheKey(req.FromCurrency, req.ToCurrency, req.Date)

		rateInfo, cached := rateCache[key]
		if !cached {
			var err error
			rateInfo, err = c.GetExchangeRate(ctx, req.FromCurrency, req.ToCurrency, req.Date)
			if err != nil {
				return nil, err
			}
			rateCache[key] = rateInfo
		}

		if rateInfo == nil {
			continue
		}

		results[i] = &model.ConversionResult{
			ConvertedAmount: req.Amount * rateInfo.Rate,
			Rate:            rateInfo.Rate,
			RateDate:        rateInfo.Date,
			IsExactRate:     rateInfo.IsExact,
			RateDaysDiff:    CalculateDaysDiff(req.Date, rateInfo.Date),
			FromCurrency:    strings.ToUpper(req.FromCurrency),
			ToCurrency:      strings.ToUpper(req.ToCurrency),
			OriginalAmount:  req.Amount,
		}
	}

	return results, nil
}

func rateCacheKey(fromCurrency, toCurrency string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(fromCurrency), strings.ToUpper(toCurrency), NormalizeToMidnight(date).Format("2006-01-02"))
}

// RateQualityScore discounts confidence based on how stale an approximate
// rate is relative to the transaction date.
func RateQualityScore(rateDaysDiff int) int {
	switch {
	case rateDaysDiff == 0:
		return 100
	case rateDaysDiff <= 1:
		return 95
	case rateDaysDiff <= 3:
		return 85
	case rateDaysDiff <= 7:
		return 70
	case rateDaysDiff <= 14:
		return 50
	case rateDaysDiff <= 30:
		return 30
	default:
		return 10
	}
}

// IsWithinConversionTolerance validates a converted amount against the
// target amount, using the target as the percentage denominator.
func IsWithinConversionTolerance(originalAmount, convertedAmount, targetAmount, tolerance float64) bool {
	if targetAmount == 0 {
		return convertedAmount == 0
	}
	percentDiff := math.Abs(convertedAmount-targetAmount) / math.Abs(targetAmount) * 100
	return percentDiff <= tolerance
}

// FormatConversion renders a conversion result for logs.
func FormatConversion(result *model.ConversionResult) string {
	exactness := "exact rate"
	if !result.IsExactRate {
		exactness = fmt.Sprintf("approximate rate (%d days diff)", result.RateDaysDiff)
	}
	return fmt.Sprintf("%s %.2f -> %s %.2f (rate: %.6f from %s, %s)",
		result.FromCurrency, result.OriginalAmount,
		result.ToCurrency, result.ConvertedAmount,
		result.Rate, FormatDateForDisplay(result.RateDate), exactness)
}
