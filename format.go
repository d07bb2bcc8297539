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
	"strings"

	"github.com/ledgermatch/ledgermatch/model"
)

// FormatMatchResult renders a match result for logs and debug output. The
// format is for humans, not machine parsing.
func FormatMatchResult(result model.MatchResult) string {
	lines := []string{
		fmt.Sprintf("Target: %s", result.TargetID),
		fmt.Sprintf("Score: %d (%s)", result.Score, result.Confidence),
		fmt.Sprintf("Match: %s", yesNo(result.IsMatch)),
		fmt.Sprintf("Cross-currency: %s", yesNo(result.IsCrossCurrency)),
		"",
		"Breakdown:",
		fmt.Sprintf("  Amount: %d/40 - %s", result.Details.Amount.Score, result.Details.Amount.Reason),
		fmt.Sprintf("  Date: %d/30 - %s", result.Details.Date.Score, result.Details.Date.Reason),
		fmt.Sprintf("  Vendor: %d/30 - %s", result.Details.Vendor.Score, result.Details.Vendor.Reason),
	}

	if result.Details.Conversion != nil {
		lines = append(lines, "", "Conversion:", "  "+FormatConversion(result.Details.Conversion))
	}

	if len(result.AppliedCaps) > 0 {
		caps := make([]string, len(result.AppliedCaps))
		for i, c := range result.AppliedCaps {
			caps[i] = fmt.Sprintf("%d", c)
		}
		lines = append(lines, "", fmt.Sprintf("Caps applied: %s", strings.Join(caps, ", ")))
	}

	return strings.Join(lines, "\n")
}

// FormatSuggestion renders a ranked suggestion for logs and debug output.
func FormatSuggestion(suggestion *model.RankedSuggestion) string {
	lines := []string{
		fmt.Sprintf("Status: %s", suggestion.Status),
		fmt.Sprintf("Reason: %s", suggestion.Reason),
		fmt.Sprintf("Requires Review: %s", yesNo(suggestion.RequiresReview)),
		"",
		fmt.Sprintf("Stats: %d/%d candidates matched", suggestion.Stats.MatchingCandidates, suggestion.Stats.TotalCandidates),
		fmt.Sprintf("High confidence: %d", suggestion.Stats.HighConfidenceCount),
		fmt.Sprintf("Average score: %.1f", suggestion.Stats.AvgScore),
	}

	if len(suggestion.Suggestions) > 0 {
		lines = append(lines, "", "Top Suggestions:")
		for i, s := range suggestion.Suggestions {
			lines = append(lines, fmt.Sprintf("  %d. %s - Score: %d (%s)", i+1, s.TargetID, s.Score, s.Confidence))
		}
	}

	if suggestion.BestMatch != nil {
		lines = append(lines, "", fmt.Sprintf("Best Match: %s", suggestion.BestMatch.TargetID))
	}

	return strings.Join(lines, "\n")
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
