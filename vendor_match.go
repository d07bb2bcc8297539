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
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/ledgermatch/ledgermatch/model"
)

// Vendor score tiers. Exact beats normalized beats alias beats fuzzy; the
// fuzzy tiers are driven by Levenshtein similarity on normalized names.
const (
	VendorScoreExact      = 30
	VendorScoreNormalized = 28
	VendorScoreAlias      = 25
	VendorScoreHighSim    = 25 // similarity >= 90
	VendorScoreGoodSim    = 20 // similarity >= 80
	VendorScoreModerate   = 15 // similarity >= 70
	VendorScoreLowSim     = 10 // similarity >= MinSimilarity

	vendorHighSimilarity     = 90
	vendorGoodSimilarity     = 80
	vendorModerateSimilarity = 70
)

// VendorConfig controls vendor comparison.
type VendorConfig struct {
	MinSimilarity int                 // lowest similarity still counted as a fuzzy match (default 60)
	Aliases       map[string][]string // canonical name -> statement aliases
	StrictMode    bool                // skip fuzzy matching entirely
}

// DefaultVendorConfig returns the documented defaults with a fresh copy of
// the built-in alias table, so callers may mutate it freely.
func DefaultVendorConfig() VendorConfig {
	return VendorConfig{
		MinSimilarity: 60,
		Aliases:       DefaultAliases(),
		StrictMode:    false,
	}
}

// DefaultAliases returns the built-in alias table keyed by normalized
// canonical name. A new map is returned on every call; there is no shared
// process-wide table.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"starbucks": {"starbucks coffee", "sbux", "starbux"},
		"amazon":    {"amzn", "amz", "amazon.com", "amazon marketplace", "amazon prime"},
		"uber":      {"uber technologies", "uber trip", "uber eats"},
		"lyft":      {"lyft ride"},
		"mcdonalds": {"mcdonald's", "mcd", "mcds"},
		"7-eleven":  {"7-11", "7 eleven", "seven eleven"},
		"grab":      {"grab*", "grabpay", "grabfood"},
		"line":      {"line pay", "linepay", "line man"},
		"lazada":    {"lazada.co.th", "lazada thailand"},
		"shopee":    {"shopee.co.th", "shopeepay"},
		"foodpanda": {"food panda", "pandamart"},
	}
}

// Normalization patterns applied in order: corporate suffixes, trailing
// location codes, asterisks, whitespace, then edge punctuation.
var vendorNormalizers = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`(?i)\s+(inc|llc|ltd|corp|co|company|corporation)\.?$`), ""},
	{regexp.MustCompile(`\s*#\d+$`), ""},
	{regexp.MustCompile(`\s*-\s*\d+$`), ""},
	{regexp.MustCompile(`\*`), ""},
	{regexp.MustCompile(`\s+`), " "},
	{regexp.MustCompile(`^[^\w]+|[^\w]+$`), ""},
}

var (
	descriptionPrefixRe = regexp.MustCompile(`(?i)^(POS\s+)?(ATM\s+)?(DEBIT\s+)?(CREDIT\s+)?(PURCHASE\s+)?(PAYMENT\s+)?`)
	descriptionDateRe1  = regexp.MustCompile(`\s*\d{2}/\d{2}(/\d{2,4})?`)
	descriptionDateRe2  = regexp.MustCompile(`\s*\d{4}-\d{2}-\d{2}`)
	descriptionCodeRe   = regexp.MustCompile(`(?i)\s+[A-Z]*\d{4,}[A-Z0-9]*`)
	descriptionStateRe  = regexp.MustCompile(`(?i)\s+[A-Z]{2}\s*$`)
)

// NormalizeVendorName lowercases, trims, and strips the noise statement
// processors append to merchant names.
func NormalizeVendorName(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	for _, n := range vendorNormalizers {
		normalized = n.pattern.ReplaceAllString(normalized, n.replace)
	}
	return strings.TrimSpace(normalized)
}

// CalculateSimilarity returns a 0-100 similarity between two strings based
// on Levenshtein distance over the longer string's length.
func CalculateSimilarity(str1, str2 string) int {
	if str1 == str2 {
		return 100
	}
	if len(str1) == 0 || len(str2) == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings([]rune(str1), []rune(str2), levenshtein.DefaultOptions)
	maxLength := len([]rune(str1))
	if l := len([]rune(str2)); l > maxLength {
		maxLength = l
	}

	return int(math.Round((1 - float64(distance)/float64(maxLength)) * 100))
}

// resolveAlias maps a normalized vendor name to its canonical name, either
// because it is itself canonical or because it appears in an alias list.
// Returns "" when the name resolves to nothing.
func resolveAlias(name string, aliases map[string][]string) string {
	if _, ok := aliases[name]; ok {
		return name
	}
	for canonical, aliasList := range aliases {
		for _, alias := range aliasList {
			if NormalizeVendorName(alias) == name {
				return canonical
			}
		}
	}
	return ""
}

// CompareVendors scores the closeness of two merchant names. The match
// order is: raw equality, normalized equality, alias resolution, then fuzzy
// similarity (skipped in strict mode). First hit wins.
func CompareVendors(sourceVendor, targetVendor string, cfg VendorConfig) model.VendorMatchResult {
	if sourceVendor == targetVendor {
		return model.VendorMatchResult{
			Score:      VendorScoreExact,
			Similarity: 100,
			IsMatch:    true,
			MatchType:  model.VendorMatchExact,
			Reason:     "Vendor names match exactly",
		}
	}

	normalizedSource := NormalizeVendorName(sourceVendor)
	normalizedTarget := NormalizeVendorName(targetVendor)

	if normalizedSource == normalizedTarget {
		return model.VendorMatchResult{
			Score:      VendorScoreNormalized,
			Similarity: 100,
			IsMatch:    true,
			MatchType:  model.VendorMatchNormalized,
			Reason:     "Vendor names match after normalization",
		}
	}

	aliases := cfg.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}

	sourceCanonical := resolveAlias(normalizedSource, aliases)
	targetCanonical := resolveAlias(normalizedTarget, aliases)

	switch {
	case sourceCanonical != "" && targetCanonical != "" && sourceCanonical == targetCanonical:
		return model.VendorMatchResult{
			Score:      VendorScoreAlias,
			Similarity: 100,
			IsMatch:    true,
			MatchType:  model.VendorMatchAlias,
			Reason:     fmt.Sprintf("Both map to canonical name: %s", sourceCanonical),
		}
	case sourceCanonical != "" && normalizedTarget == sourceCanonical:
		return model.VendorMatchResult{
			Score:      VendorScoreAlias,
			Similarity: 100,
			IsMatch:    true,
			MatchType:  model.VendorMatchAlias,
			Reason:     fmt.Sprintf("%q is an alias for %q", sourceVendor, targetVendor),
		}
	case targetCanonical != "" && normalizedSource == targetCanonical:
		return model.VendorMatchResult{
			Score:      VendorScoreAlias,
			Similarity: 100,
			IsMatch:    true,
			MatchType:  model.VendorMatchAlias,
			Reason:     fmt.Sprintf("%q is an alias for %q", targetVendor, sourceVendor),
		}
	}

	if cfg.StrictMode {
		return model.VendorMatchResult{
			Score:      0,
			Similarity: CalculateSimilarity(normalizedSource, normalizedTarget),
			IsMatch:    false,
			MatchType:  model.VendorMatchNone,
			Reason:     "No exact or alias match found (strict mode)",
		}
	}

	similarity := CalculateSimilarity(normalizedSource, normalizedTarget)

	switch {
	case similarity >= vendorHighSimilarity:
		return fuzzyResult(VendorScoreHighSim, similarity, fmt.Sprintf("High similarity match (%d%%)", similarity))
	case similarity >= vendorGoodSimilarity:
		return fuzzyResult(VendorScoreGoodSim, similarity, fmt.Sprintf("Good similarity match (%d%%)", similarity))
	case similarity >= vendorModerateSimilarity:
		return fuzzyResult(VendorScoreModerate, similarity, fmt.Sprintf("Moderate similarity match (%d%%)", similarity))
	case similarity >= cfg.MinSimilarity:
		return fuzzyResult(VendorScoreLowSim, similarity, fmt.Sprintf("Low similarity match (%d%%)", similarity))
	}

	return model.VendorMatchResult{
		Score:      0,
		Similarity: similarity,
		IsMatch:    false,
		MatchType:  model.VendorMatchNone,
		Reason:     fmt.Sprintf("Similarity too low (%d%% < %d%% threshold)", similarity, cfg.MinSimilarity),
	}
}

func fuzzyResult(score, similarity int, reason string) model.VendorMatchResult {
	return model.VendorMatchResult{
		Score:      score,
		Similarity: similarity,
		IsMatch:    true,
		MatchType:  model.VendorMatchFuzzy,
		Reason:     reason,
	}
}

// FindBestVendorMatch scans candidates for the closest vendor name,
// short-circuiting on an exact hit. Returns -1 when candidates is empty.
func FindBestVendorMatch(sourceVendor string, candidates []string, cfg VendorConfig) (int, model.VendorMatchResult) {
	if len(candidates) == 0 {
		return -1, model.VendorMatchResult{}
	}

	bestIndex := -1
	var best model.VendorMatchResult

	for i, candidate := range candidates {
		result := CompareVendors(sourceVendor, candidate, cfg)
		if bestIndex == -1 || result.Score > best.Score {
			bestIndex = i
			best = result
		}
		if result.MatchType == model.VendorMatchExact {
			break
		}
	}

	return bestIndex, best
}

// IsLikelyMatch reports whether two vendor names are likely the same vendor
// under the default configuration.
func IsLikelyMatch(vendor1, vendor2 string) bool {
	return CompareVendors(vendor1, vendor2, DefaultVendorConfig()).IsMatch
}

// ExtractVendorFromDescription pulls the merchant name out of a raw
// statement description by stripping transaction-type prefixes, embedded
// dates, digit-heavy transaction codes, and trailing state codes.
func ExtractVendorFromDescription(description string) string {
	vendor := descriptionPrefixRe.ReplaceAllString(description, "")
	vendor = descriptionDateRe1.ReplaceAllString(vendor, "")
	vendor = descriptionDateRe2.ReplaceAllString(vendor, "")
	vendor = descriptionCodeRe.ReplaceAllString(vendor, "")
	vendor = descriptionStateRe.ReplaceAllString(vendor, "")
	return NormalizeVendorName(vendor)
}

// NewAliasMap merges caller-supplied aliases into the built-in table,
// keying each canonical name by its normalized form.
func NewAliasMap(extra map[string][]string) map[string][]string {
	combined := DefaultAliases()
	for canonical, aliasList := range extra {
		normalized := NormalizeVendorName(canonical)
		combined[normalized] = append(combined[normalized], aliasList...)
	}
	return combined
}
