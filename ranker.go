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

	"go.opentelemetry.io/otel"

	"github.com/ledgermatch/ledgermatch/model"
)

// RankConfig controls how scored candidates collapse into a single status.
type RankConfig struct {
	MaxSuggestions         int // suggestions returned per source (default 3)
	AutoMatchThreshold     int // score treated as high confidence (default 90)
	ClearWinnerGap         int // point gap that makes the top candidate unambiguous (default 10)
	LowConfidenceThreshold int // score below which everything is low confidence (default 55)
}

// DefaultRankConfig returns the documented defaults.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		MaxSuggestions:         3,
		AutoMatchThreshold:     90,
		ClearWinnerGap:         10,
		LowConfidenceThreshold: 55,
	}
}

// Ranker turns the scored candidate list for a source transaction into a
// terminal status with top suggestions and a review flag.
type Ranker struct {
	scorer *Scorer
	cfg    RankConfig
}

// NewRanker wires a ranker to a scorer.
func NewRanker(scorer *Scorer, cfg RankConfig) *Ranker {
	return &Ranker{scorer: scorer, cfg: cfg}
}

// determineStatus runs the status state machine over score-descending
// results. Exactly one terminal status comes out per ranking call.
func (r *Ranker) determineStatus(rankedResults []model.MatchResult) (model.MatchStatus, string) {
	if len(rankedResults) == 0 {
		return model.StatusNoMatch, "No candidates found within search criteria"
	}

	validMatches := filterValid(rankedResults)
	if len(validMatches) == 0 {
		return model.StatusNoMatch, "No candidates met minimum matching threshold"
	}

	topScore := validMatches[0].Score

	if topScore < r.cfg.LowConfidenceThreshold {
		return model.StatusLowConfidence,
			fmt.Sprintf("Best match score (%d) below confidence threshold (%d)", topScore, r.cfg.LowConfidenceThreshold)
	}

	if topScore >= r.cfg.AutoMatchThreshold {
		if len(validMatches) == 1 {
			return model.StatusMatched, fmt.Sprintf("Single high-confidence match found (score: %d)", topScore)
		}

		secondScore := validMatches[1].Score
		gap := topScore - secondScore
		if gap >= r.cfg.ClearWinnerGap {
			return model.StatusMatched, fmt.Sprintf("Clear winner with %d-point gap (%d vs %d)", gap, topScore, secondScore)
		}

		return model.StatusMultipleMatches,
			fmt.Sprintf("Multiple high-confidence matches (top: %d, second: %d)", topScore, secondScore)
	}

	if len(validMatches) > 1 {
		return model.StatusMultipleMatches, fmt.Sprintf("Multiple candidates found (top score: %d)", topScore)
	}

	return model.StatusMatched, fmt.Sprintf("Single match found (score: %d)", topScore)
}

// RankMatches ranks the candidates for one source transaction. The result
// always carries a status and never an error for "bad" candidates; the only
// error path is a failing rate store during scoring.
func (r *Ranker) RankMatches(ctx context.Context, source model.SourceTransaction, targets []model.TargetTransaction) (*model.RankedSuggestion, error) {
	ctx, span := otel.Tracer("ledgermatch.ranker").Start(ctx, "Ranking candidates")
	defer span.End()

	if len(targets) == 0 {
		return &model.RankedSuggestion{
			Status:         model.StatusNoMatch,
			Suggestions:    []model.MatchResult{},
			BestMatch:      nil,
			Stats:          model.SuggestionStats{},
			Reason:         "No candidate transactions provided",
			RequiresReview: false,
		}, nil
	}

	rankedResults, err := r.scorer.CalculateMatchScores(ctx, source, targets)
	if err != nil {
		return nil, err
	}
	stats := GetMatchStatistics(rankedResults)

	status, reason := r.determineStatus(rankedResults)

	validMatches := filterValid(rankedResults)
	suggestions := validMatches
	if len(suggestions) > r.cfg.MaxSuggestions {
		suggestions = suggestions[:r.cfg.MaxSuggestions]
	}

	var bestMatch *model.MatchResult
	if status == model.StatusMatched && len(suggestions) > 0 {
		bestMatch = &suggestions[0]
	}

	requiresReview := status == model.StatusMultipleMatches ||
		status == model.StatusLowConfidence ||
		(status == model.StatusMatched && suggestions[0].Confidence != model.ConfidenceHigh)

	return &model.RankedSuggestion{
		Status:      status,
		Suggestions: suggestions,
		BestMatch:   bestMatch,
		Stats: model.SuggestionStats{
			TotalCandidates:     len(targets),
			MatchingCandidates:  stats.Matched,
			HighConfidenceCount: stats.HighConfidence,
			AvgScore:            stats.AvgScore,
		},
		Reason:         reason,
		RequiresReview: requiresReview,
	}, nil
}

// TargetsFunc supplies the candidate list for one source transaction in a
// batch, typically backed by a ledger date-window query.
type TargetsFunc func(ctx context.Context, source model.SourceTransaction, index int) ([]model.TargetTransaction, error)

// RankMatchesBatch ranks many source transactions, fetching candidates per
// source through targetsFn. Each source is ranked independently; a source
// with no candidates simply ranks as no_match.
func (r *Ranker) RankMatchesBatch(ctx context.Context, sources []model.SourceTransaction, targetsFn TargetsFunc) (*model.BatchRankingResult, error) {
	ctx, span := otel.Tracer("ledgermatch.ranker").Start(ctx, "Ranking batch")
	defer span.End()

	batch := &model.BatchRankingResult{
		BatchID: model.GenerateUUIDWithSuffix("batch"),
		Results: make([]model.RankedSuggestion, 0, len(sources)),
		Summary: model.BatchSummary{Total: len(sources)},
	}

	for i, source := range sources {
		targets, err := targetsFn(ctx, source, i)
		if err != nil {
			return nil, err
		}

		suggestion, err := r.RankMatches(ctx, source, targets)
		if err != nil {
			return nil, err
		}

		batch.Results = append(batch.Results, *suggestion)

		switch suggestion.Status {
		case model.StatusMatched:
			batch.Summary.Matched++
		case model.StatusMultipleMatches:
			batch.Summary.MultipleMatches++
		case model.StatusNoMatch:
			batch.Summary.NoMatch++
		case model.StatusLowConfidence:
			batch.Summary.LowConfidence++
		}
		if suggestion.RequiresReview {
			batch.Summary.RequiresReview++
		}
	}

	return batch, nil
}

// BestTargetID returns the target to act on: the best match when set, else
// the top suggestion, else "".
func BestTargetID(suggestion *model.RankedSuggestion) string {
	if suggestion.BestMatch != nil {
		return suggestion.BestMatch.TargetID
	}
	if len(suggestion.Suggestions) > 0 {
		return suggestion.Suggestions[0].TargetID
	}
	return ""
}

// CanAutoApprove reports whether a suggestion is safe to apply without a
// human: a matched status with a HIGH-confidence best match and no review
// flag.
func CanAutoApprove(suggestion *model.RankedSuggestion) bool {
	return suggestion.Status == model.StatusMatched &&
		suggestion.BestMatch != nil &&
		suggestion.BestMatch.Confidence == model.ConfidenceHigh &&
		!suggestion.RequiresReview
}

// FilterByStatus keeps the batch entries with the given status, preserving
// batch order.
func FilterByStatus(results []model.RankedSuggestion, status model.MatchStatus) []model.RankedSuggestion {
	var filtered []model.RankedSuggestion
	for _, suggestion := range results {
		if suggestion.Status == status {
			filtered = append(filtered, suggestion)
		}
	}
	return filtered
}

// ReviewRequired keeps the batch entries flagged for manual review.
func ReviewRequired(results []model.RankedSuggestion) []model.RankedSuggestion {
	var filtered []model.RankedSuggestion
	for _, suggestion := range results {
		if suggestion.RequiresReview {
			filtered = append(filtered, suggestion)
		}
	}
	return filtered
}

func filterValid(results []model.MatchResult) []model.MatchResult {
	var valid []model.MatchResult
	for _, r := range results {
		if r.IsMatch {
			valid = append(valid, r)
		}
	}
	return valid
}
