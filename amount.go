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
	"fmt"
	"math"
	"strings"

	"github.com/ledgermatch/ledgermatch/model"
)

// Amount score tiers. The percent difference between two amounts decides
// which tier applies; tiers beyond the acceptable band score zero and
// instead cap the composite confidence.
const (
	AmountScoreExact      = 40 // within exact tolerance
	AmountScoreVeryClose  = 35 // within 2%
	AmountScoreClose      = 25 // within 5%
	AmountScoreAcceptable = 15 // within 10%
	AmountFarCap          = 60 // confidence cap once past the acceptable band

	amountVeryCloseDiff  = 2.0
	amountCloseDiff      = 5.0
	amountAcceptableDiff = 10.0

	// Tolerance applied when comparing a converted amount, to absorb
	// exchange-rate noise.
	crossCurrencyTolerance = 2.0
)

// AmountConfig controls amount comparison.
type AmountConfig struct {
	ExactMatchTolerance float64 // percent difference still treated as exact (default 0)
	MaxPercentDiff      float64 // largest difference still counted as a weak match (default 10)
	CompareAbsolute     bool    // compare absolute values (default true)
}

// DefaultAmountConfig returns the documented defaults.
func DefaultAmountConfig() AmountConfig {
	return AmountConfig{
		ExactMatchTolerance: 0,
		MaxPercentDiff:      10,
		CompareAbsolute:     true,
	}
}

// CalculatePercentDiff returns the percent difference between two amounts
// using an average-based denominator, so the result is symmetric:
// |a1-a2| / ((a1+a2)/2) * 100. Both sides zero yields 0; one side zero
// yields 100.
func CalculatePercentDiff(amount1, amount2 float64, useAbsolute bool) float64 {
	a1, a2 := amount1, amount2
	if useAbsolute {
		a1 = math.Abs(amount1)
		a2 = math.Abs(amount2)
	}

	if a1 == 0 && a2 == 0 {
		return 0
	}
	if a1 == 0 || a2 == 0 {
		return 100
	}

	diff := math.Abs(a1 - a2)
	avg := (a1 + a2) / 2
	if avg == 0 {
		// e.g. -100 vs 100 with absolute comparison disabled
		return 100
	}

	return (diff / avg) * 100
}

// CompareAmounts scores the closeness of two amounts in the same currency.
// It never returns an error: a bad match is reported as a low score with an
// explanatory reason, and differences past the acceptable band additionally
// cap the overall achievable confidence.
func CompareAmounts(sourceAmount, targetAmount float64, cfg AmountConfig) model.AmountMatchResult {
	percentDiff := CalculatePercentDiff(sourceAmount, targetAmount, cfg.CompareAbsolute)

	if percentDiff <= cfg.ExactMatchTolerance {
		return model.AmountMatchResult{
			Score:       AmountScoreExact,
			PercentDiff: percentDiff,
			IsMatch:     true,
			Reason:      "Amounts match exactly",
		}
	}

	if percentDiff <= amountVeryCloseDiff {
		return model.AmountMatchResult{
			Score:       AmountScoreVeryClose,
			PercentDiff: percentDiff,
			IsMatch:     true,
			Reason:      fmt.Sprintf("Amounts within %.1f%% (excellent match)", percentDiff),
		}
	}

	if percentDiff <= amountCloseDiff {
		return model.AmountMatchResult{
			Score:       AmountScoreClose,
			PercentDiff: percentDiff,
			IsMatch:     true,
			Reason:      fmt.Sprintf("Amounts within %.1f%% (good match)", percentDiff),
		}
	}

	if percentDiff <= amountAcceptableDiff {
		return model.AmountMatchResult{
			Score:       AmountScoreAcceptable,
			PercentDiff: percentDiff,
			IsMatch:     true,
			Reason:      fmt.Sprintf("Amounts within %.1f%% (acceptable match)", percentDiff),
		}
	}

	if percentDiff <= cfg.MaxPercentDiff {
		return model.AmountMatchResult{
			Score:         0,
			PercentDiff:   percentDiff,
			IsMatch:       false,
			ConfidenceCap: AmountFarCap,
			Reason:        fmt.Sprintf("Amounts differ by %.1f%% (weak match)", percentDiff),
		}
	}

	return model.AmountMatchResult{
		Score:         0,
		PercentDiff:   percentDiff,
		IsMatch:       false,
		ConfidenceCap: AmountFarCap,
		Reason:        fmt.Sprintf("Amounts differ by %.1f%% (exceeds %.0f%% threshold)", percentDiff, cfg.MaxPercentDiff),
	}
}

// IsWithinExchangeRateTolerance reports whether two amounts sit within the
// 2% band expected of exchange-rate variance.
func IsWithinExchangeRateTolerance(sourceAmount, convertedAmount float64) bool {
	return CalculatePercentDiff(sourceAmount, convertedAmount, true) <= crossCurrencyTolerance
}

// CompareCurrencyAmounts compares amounts across currencies. Same-currency
// pairs delegate to CompareAmounts directly. For differing currencies the
// caller must supply a pre-converted amount; without one the comparison
// cannot proceed and scores zero.
func CompareCurrencyAmounts(sourceAmount float64, sourceCurrency string, targetAmount float64, targetCurrency string, convertedAmount *float64) model.AmountMatchResult {
	if strings.EqualFold(sourceCurrency, targetCurrency) {
		return CompareAmounts(sourceAmount, targetAmount, DefaultAmountConfig())
	}

	if convertedAmount == nil {
		return model.AmountMatchResult{
			Score:       0,
			PercentDiff: 100,
			IsMatch:     false,
			Reason:      "Different currencies - conversion required for comparison",
		}
	}

	cfg := DefaultAmountConfig()
	cfg.ExactMatchTolerance = crossCurrencyTolerance
	result := CompareAmounts(*convertedAmount, targetAmount, cfg)

	pair := fmt.Sprintf("%s -> %s", strings.ToUpper(sourceCurrency), strings.ToUpper(targetCurrency))
	if result.IsMatch {
		result.Reason = fmt.Sprintf("Cross-currency match: %s, %s", pair, result.Reason)
	} else {
		result.Reason = fmt.Sprintf("Cross-currency comparison: %s, %s", pair, result.Reason)
	}

	return result
}

// FindBestAmountMatch scans candidates for the closest amount, keeping the
// highest score and short-circuiting on a perfect one. Returns the index of
// the best candidate, or -1 when candidates is empty.
func FindBestAmountMatch(sourceAmount float64, candidates []float64) (int, model.AmountMatchResult) {
	if len(candidates) == 0 {
		return -1, model.AmountMatchResult{}
	}

	bestIndex := -1
	var best model.AmountMatchResult

	for i, candidate := range candidates {
		result := CompareAmounts(sourceAmount, candidate, DefaultAmountConfig())
		if bestIndex == -1 || result.Score > best.Score {
			bestIndex = i
			best = result
		}
		if result.Score == AmountScoreExact {
			break
		}
	}

	return bestIndex, best
}
