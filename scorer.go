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
	"sort"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/ledgermatch/ledgermatch/model"
)

// Maximum raw scores each matcher can return. Weights rescale these
// contributions but never change a matcher's internal ceiling.
const (
	maxAmountRaw = 40
	maxDateRaw   = 30
	maxVendorRaw = 30

	// Cap applied when a cross-currency amount cannot be compared at all.
	missingRateCap = 50
)

// Weights distributes the composite score across the three factors.
type Weights struct {
	Amount float64
	Date   float64
	Vendor float64
}

// DefaultWeights returns the standard 40/30/30 split.
func DefaultWeights() Weights {
	return Weights{Amount: 40, Date: 30, Vendor: 30}
}

// ScoreConfig controls composite scoring.
type ScoreConfig struct {
	MinMatchScore      int  // composite score required for IsMatch (default 55)
	RequireVendorMatch bool // force IsMatch=false when the vendor factor missed
	RequireDateMatch   bool // force IsMatch=false when the date factor missed
	Weights            Weights
	Amount             AmountConfig
	Date               DateConfig
	Vendor             VendorConfig
}

// DefaultScoreConfig returns the documented defaults.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		MinMatchScore: 55,
		Weights:       DefaultWeights(),
		Amount:        DefaultAmountConfig(),
		Date:          DefaultDateConfig(),
		Vendor:        DefaultVendorConfig(),
	}
}

// Scorer composes the amount, date, and vendor matchers into one 0-100
// composite score per source/target pair. A scorer built with NewScorer has
// no rate source: cross-currency pairs score zero on the amount factor and
// are capped at 50. Use NewScorerWithRates when a rate store is available.
type Scorer struct {
	converter *Converter
	cfg       ScoreConfig
}

// NewScorer builds a scorer without exchange-rate lookups.
func NewScorer(cfg ScoreConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// NewScorerWithRates builds a scorer that converts cross-currency amounts
// through the given converter.
func NewScorerWithRates(converter *Converter, cfg ScoreConfig) *Scorer {
	return &Scorer{converter: converter, cfg: cfg}
}

// CalculateMatchScore scores one source transaction against one ledger
// candidate. Uncertainty is data: a bad match, a missing rate, or a
// cross-currency pair without a rate source all come back as low scores
// with reasons, never as errors. The only error path is a failing rate
// store.
func (s *Scorer) CalculateMatchScore(ctx context.Context, source model.SourceTransaction, target model.TargetTransaction) (model.MatchResult, error) {
	return s.calculateMatchScore(ctx, source, target, make(map[string]*model.ConversionResult))
}

func (s *Scorer) calculateMatchScore(ctx context.Context, source model.SourceTransaction, target model.TargetTransaction, conversionCache map[string]*model.ConversionResult) (model.MatchResult, error) {
	var reasons []string
	var appliedCaps []int
	var conversion *model.ConversionResult

	isCrossCurrency := !strings.EqualFold(source.Currency, target.Currency)

	var amountResult model.AmountMatchResult

	switch {
	case isCrossCurrency && s.converter != nil:
		key := rateCacheKey(source.Currency, target.Currency, source.Date)
		cached, hit := conversionCache[key]
		if !hit {
			var err error
			cached, err = s.converter.Convert(ctx, source.Amount, source.Currency, target.Currency, source.Date)
			if err != nil {
				return model.MatchResult{}, err
			}
			conversionCache[key] = cached
		}
		conversion = cached

		if conversion != nil {
			amountResult = CompareCurrencyAmounts(source.Amount, source.Currency, target.Amount, target.Currency, &conversion.ConvertedAmount)

			if !conversion.IsExactRate {
				if quality := RateQualityScore(conversion.RateDaysDiff); quality < 100 {
					amountResult.Score = int(math.Round(float64(amountResult.Score) * float64(quality) / 100))
					amountResult.Reason = fmt.Sprintf("%s (rate quality: %d%%)", amountResult.Reason, quality)
				}
			}
		} else {
			amountResult = model.AmountMatchResult{
				Score:         0,
				PercentDiff:   100,
				IsMatch:       false,
				ConfidenceCap: missingRateCap,
				Reason:        fmt.Sprintf("Cannot convert %s to %s - no exchange rate found", strings.ToUpper(source.Currency), strings.ToUpper(target.Currency)),
			}
		}
	case isCrossCurrency:
		amountResult = model.AmountMatchResult{
			Score:         0,
			PercentDiff:   100,
			IsMatch:       false,
			ConfidenceCap: missingRateCap,
			Reason:        "Cross-currency comparison requires exchange rate lookup",
		}
	default:
		amountResult = CompareAmounts(source.Amount, target.Amount, s.cfg.Amount)
	}

	reasons = append(reasons, fmt.Sprintf("Amount: %s", amountResult.Reason))
	if amountResult.ConfidenceCap > 0 {
		appliedCaps = append(appliedCaps, amountResult.ConfidenceCap)
	}

	dateResult := CompareDates(source.Date, target.Date, s.cfg.Date)
	reasons = append(reasons, fmt.Sprintf("Date: %s", dateResult.Reason))
	if dateResult.ConfidenceCap > 0 {
		appliedCaps = append(appliedCaps, dateResult.ConfidenceCap)
	}

	vendorResult := CompareVendors(source.Vendor, target.Vendor, s.cfg.Vendor)
	reasons = append(reasons, fmt.Sprintf("Vendor: %s", vendorResult.Reason))

	rawScore := normalizeScore(amountResult.Score, maxAmountRaw, s.cfg.Weights.Amount) +
		normalizeScore(dateResult.Score, maxDateRaw, s.cfg.Weights.Date) +
		normalizeScore(vendorResult.Score, maxVendorRaw, s.cfg.Weights.Vendor)

	finalScore := applyConfidenceCaps(int(math.Round(rawScore)), appliedCaps)

	isMatch := finalScore >= s.cfg.MinMatchScore
	if s.cfg.RequireVendorMatch && !vendorResult.IsMatch {
		isMatch = false
		reasons = append(reasons, "Vendor match required but not found")
	}
	if s.cfg.RequireDateMatch && !dateResult.IsMatch {
		isMatch = false
		reasons = append(reasons, "Date match required but not found")
	}

	return model.MatchResult{
		TargetID:   target.TargetID,
		Score:      finalScore,
		Confidence: model.GetConfidenceLevel(finalScore),
		IsMatch:    isMatch,
		Details: model.MatchScoreDetails{
			Amount:     amountResult,
			Date:       dateResult,
			Vendor:     vendorResult,
			Conversion: conversion,
		},
		Reasons:         reasons,
		AppliedCaps:     appliedCaps,
		IsCrossCurrency: isCrossCurrency,
	}, nil
}

// normalizeScore rescales a matcher's raw score to its configured weight.
func normalizeScore(matcherScore, maxMatcherScore int, weight float64) float64 {
	if maxMatcherScore == 0 {
		return 0
	}
	return float64(matcherScore) / float64(maxMatcherScore) * weight
}

// applyConfidenceCaps bounds the composite score by every collected cap.
func applyConfidenceCaps(rawScore int, caps []int) int {
	final := rawScore
	for _, c := range caps {
		if c < final {
			final = c
		}
	}
	return final
}

// CalculateMatchScores scores a source transaction against every target and
// returns the results sorted by score descending. Rate lookups are
// deduplicated per call. Ties on composite score break deterministically:
// smaller date gap first, then lexicographic target ID.
func (s *Scorer) CalculateMatchScores(ctx context.Context, source model.SourceTransaction, targets []model.TargetTransaction) ([]model.MatchResult, error) {
	ctx, span := otel.Tracer("ledgermatch.scorer").Start(ctx, "Scoring candidates")
	defer span.End()

	if len(targets) == 0 {
		return []model.MatchResult{}, nil
	}

	conversionCache := make(map[string]*model.ConversionResult)
	results := make([]model.MatchResult, 0, len(targets))

	for _, target := range targets {
		result, err := s.calculateMatchScore(ctx, source, target, conversionCache)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Details.Date.DaysDiff != results[j].Details.Date.DaysDiff {
			return results[i].Details.Date.DaysDiff < results[j].Details.Date.DaysDiff
		}
		return results[i].TargetID < results[j].TargetID
	})

	return results, nil
}

// FindBestMatch returns the top-scoring result only when it is a valid
// match, otherwise nil.
func (s *Scorer) FindBestMatch(ctx context.Context, source model.SourceTransaction, targets []model.TargetTransaction) (*model.MatchResult, error) {
	results, err := s.CalculateMatchScores(ctx, source, targets)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	best := results[0]
	if !best.IsMatch {
		return nil, nil
	}
	return &best, nil
}

// GetMatchStatistics aggregates counts over a set of results. The average
// score is rounded to one decimal place.
func GetMatchStatistics(results []model.MatchResult) model.MatchStatistics {
	stats := model.MatchStatistics{Total: len(results)}

	totalScore := 0
	for _, r := range results {
		totalScore += r.Score
		if r.IsMatch {
			stats.Matched++
		}
		switch r.Confidence {
		case model.ConfidenceHigh:
			stats.HighConfidence++
		case model.ConfidenceMedium:
			stats.MediumConfidence++
		case model.ConfidenceLow:
			stats.LowConfidence++
		}
		if r.IsCrossCurrency {
			stats.CrossCurrency++
		}
	}

	if len(results) > 0 {
		avg := float64(totalScore) / float64(len(results))
		stats.AvgScore = math.Round(avg*10) / 10
	}

	return stats
}
