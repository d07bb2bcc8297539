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
package model

// Confidence classifies a composite score into review tiers.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"   // score >= 90
	ConfidenceMedium Confidence = "MEDIUM" // score >= 55
	ConfidenceLow    Confidence = "LOW"    // score < 55
)

// MatchStatus is the terminal outcome of ranking one source transaction.
type MatchStatus string

const (
	StatusMatched         MatchStatus = "matched"          // single clear match
	StatusMultipleMatches MatchStatus = "multiple_matches" // ambiguous, needs review
	StatusNoMatch         MatchStatus = "no_match"         // nothing usable
	StatusLowConfidence   MatchStatus = "low_confidence"   // matches exist but too weak
)

// VendorMatchType tags how two vendor names were reconciled.
type VendorMatchType string

const (
	VendorMatchExact      VendorMatchType = "exact"
	VendorMatchNormalized VendorMatchType = "normalized"
	VendorMatchFuzzy      VendorMatchType = "fuzzy"
	VendorMatchAlias      VendorMatchType = "alias"
	VendorMatchNone       VendorMatchType = "none"
)

// AmountMatchResult is the outcome of comparing two amounts.
// Score contributes up to 40 points to the composite score. ConfidenceCap,
// when non-zero, bounds the composite score the pair can reach.
type AmountMatchResult struct {
	Score         int     `json:"score"`
	PercentDiff   float64 `json:"percent_diff"`
	IsMatch       bool    `json:"is_match"`
	ConfidenceCap int     `json:"confidence_cap,omitempty"`
	Reason        string  `json:"reason"`
}

// DateMatchResult is the outcome of comparing two transaction dates.
// Score contributes up to 30 points to the composite score.
type DateMatchResult struct {
	Score         int    `json:"score"`
	DaysDiff      int    `json:"days_diff"`
	IsMatch       bool   `json:"is_match"`
	ConfidenceCap int    `json:"confidence_cap,omitempty"`
	Reason        string `json:"reason"`
}

// VendorMatchResult is the outcome of comparing two vendor names.
// Score contributes up to 30 points to the composite score.
type VendorMatchResult struct {
	Score      int             `json:"score"`
	Similarity int             `json:"similarity"`
	IsMatch    bool            `json:"is_match"`
	MatchType  VendorMatchType `json:"match_type"`
	Reason     string          `json:"reason"`
}

// MatchScoreDetails carries the per-factor breakdown behind a MatchResult.
type MatchScoreDetails struct {
	Amount     AmountMatchResult `json:"amount"`
	Date       DateMatchResult   `json:"date"`
	Vendor     VendorMatchResult `json:"vendor"`
	Conversion *ConversionResult `json:"conversion,omitempty"`
}

// MatchResult is the composite outcome of scoring one source transaction
// against one ledger candidate. Score is always the minimum of the raw
// weighted sum and every entry in AppliedCaps.
type MatchResult struct {
	TargetID        string            `json:"target_id"`
	Score           int               `json:"score"`
	Confidence      Confidence        `json:"confidence"`
	IsMatch         bool              `json:"is_match"`
	Details         MatchScoreDetails `json:"details"`
	Reasons         []string          `json:"reasons"`
	AppliedCaps     []int             `json:"applied_caps,omitempty"`
	IsCrossCurrency bool              `json:"is_cross_currency"`
}

// SuggestionStats summarizes the candidate pool a suggestion was drawn from.
type SuggestionStats struct {
	TotalCandidates     int     `json:"total_candidates"`
	MatchingCandidates  int     `json:"matching_candidates"`
	HighConfidenceCount int     `json:"high_confidence_count"`
	AvgScore            float64 `json:"avg_score"`
}

// RankedSuggestion is the ranked outcome for one source transaction:
// a status, the top suggestions, and whether a human needs to look at it.
type RankedSuggestion struct {
	Status         MatchStatus     `json:"status"`
	Suggestions    []MatchResult   `json:"suggestions"`
	BestMatch      *MatchResult    `json:"best_match,omitempty"`
	Stats          SuggestionStats `json:"stats"`
	Reason         string          `json:"reason"`
	RequiresReview bool            `json:"requires_review"`
}

// MatchStatistics aggregates a set of match results.
type MatchStatistics struct {
	Total            int     `json:"total"`
	Matched          int     `json:"matched"`
	HighConfidence   int     `json:"high_confidence"`
	MediumConfidence int     `json:"medium_confidence"`
	LowConfidence    int     `json:"low_confidence"`
	AvgScore         float64 `json:"avg_score"`
	CrossCurrency    int     `json:"cross_currency"`
}

// BatchSummary counts ranking outcomes across a batch of source transactions.
type BatchSummary struct {
	Total           int `json:"total"`
	Matched         int `json:"matched"`
	MultipleMatches int `json:"multiple_matches"`
	NoMatch         int `json:"no_match"`
	LowConfidence   int `json:"low_confidence"`
	RequiresReview  int `json:"requires_review"`
}

// BatchRankingResult holds per-source ranking results, indexed by the
// position of the source transaction in the input batch.
type BatchRankingResult struct {
	BatchID string             `json:"batch_id"`
	Results []RankedSuggestion `json:"results"`
	Summary BatchSummary       `json:"summary"`
}
