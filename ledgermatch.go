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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgermatch/ledgermatch/cache"
	"github.com/ledgermatch/ledgermatch/config"
	"github.com/ledgermatch/ledgermatch/database"
	"github.com/ledgermatch/ledgermatch/model"
)

const rateCacheTTL = 1 * time.Hour

// Ledgermatch is the match engine service: it wires the rate store, the
// optional redis rate cache, and the scoring/ranking pipeline behind one
// entry point for callers such as the HTTP API.
type Ledgermatch struct {
	datasource database.IDataSource
	converter  *Converter

	mu       sync.RWMutex
	scoreCfg ScoreConfig
	rankCfg  RankConfig
	scorer   *Scorer
	ranker   *Ranker
}

// NewLedgermatch initializes the engine with the provided datasource,
// pulling thresholds from configuration. The redis rate cache is optional:
// when it cannot be reached the engine falls back to uncached lookups.
func NewLedgermatch(db database.IDataSource) (*Ledgermatch, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var rates RateSource = db
	if configuration.Redis.Dns != "" {
		rateCache, err := cache.NewCache()
		if err != nil {
			logrus.Warnf("rate cache unavailable, falling back to direct lookups: %v", err)
		} else {
			rates = &cachedRateSource{inner: db, cache: rateCache}
		}
	}

	conversionCfg := ConversionConfig{
		MaxDaysBack:      configuration.Matching.RateMaxDaysBack,
		AllowApproximate: !configuration.Matching.DisableApproximateRate,
	}
	converter := NewConverter(rates, conversionCfg)

	scoreCfg := DefaultScoreConfig()
	scoreCfg.MinMatchScore = configuration.Matching.MinMatchScore
	scoreCfg.Date.MaxDaysDiff = configuration.Matching.MaxDaysDiff
	scoreCfg.Vendor.MinSimilarity = configuration.Matching.MinVendorSimilarity
	scorer := NewScorerWithRates(converter, scoreCfg)

	rankCfg := RankConfig{
		MaxSuggestions:         configuration.Matching.MaxSuggestions,
		AutoMatchThreshold:     configuration.Matching.AutoMatchThreshold,
		ClearWinnerGap:         configuration.Matching.ClearWinnerGap,
		LowConfidenceThreshold: configuration.Matching.MinMatchScore,
	}

	return &Ledgermatch{
		datasource: db,
		converter:  converter,
		scoreCfg:   scoreCfg,
		rankCfg:    rankCfg,
		scorer:     scorer,
		ranker:     NewRanker(scorer, rankCfg),
	}, nil
}

// Scorer exposes the configured scorer for direct pair scoring.
func (l *Ledgermatch) Scorer() *Scorer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scorer
}

// Ranker exposes the configured ranker.
func (l *Ledgermatch) Ranker() *Ranker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ranker
}

// Converter exposes the configured currency converter.
func (l *Ledgermatch) Converter() *Converter {
	return l.converter
}

// VendorAliases returns a copy of the alias table the vendor matcher is
// currently using.
func (l *Ledgermatch) VendorAliases() map[string][]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	aliases := make(map[string][]string, len(l.scoreCfg.Vendor.Aliases))
	for canonical, aliasList := range l.scoreCfg.Vendor.Aliases {
		aliases[canonical] = append([]string(nil), aliasList...)
	}
	return aliases
}

// AddVendorAliases merges extra aliases into the vendor matcher's table,
// keyed by normalized canonical name, and rebuilds the scoring pipeline so
// in-flight requests keep their old view.
func (l *Ledgermatch) AddVendorAliases(extra map[string][]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string][]string, len(l.scoreCfg.Vendor.Aliases)+len(extra))
	for canonical, aliasList := range l.scoreCfg.Vendor.Aliases {
		merged[canonical] = append([]string(nil), aliasList...)
	}
	for canonical, aliasList := range extra {
		normalized := NormalizeVendorName(canonical)
		merged[normalized] = append(merged[normalized], aliasList...)
	}

	l.scoreCfg.Vendor.Aliases = merged
	l.scorer = NewScorerWithRates(l.converter, l.scoreCfg)
	l.ranker = NewRanker(l.scorer, l.rankCfg)
}

// SuggestMatches fetches ledger candidates inside the source's date search
// window and ranks them. Candidates are not filtered by currency since
// cross-currency matches are legal.
func (l *Ledgermatch) SuggestMatches(ctx context.Context, source model.SourceTransaction) (*model.RankedSuggestion, error) {
	start, end := DateSearchWindow(source.Date, dateTolerance)
	targets, err := l.datasource.GetCandidateTransactions(ctx, "", start, end)
	if err != nil {
		return nil, err
	}

	suggestion, err := l.Ranker().RankMatches(ctx, source, targets)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"vendor":     source.Vendor,
		"status":     suggestion.Status,
		"candidates": suggestion.Stats.TotalCandidates,
	}).Debug("ranked match suggestions")

	return suggestion, nil
}

// SuggestMatchesBatch ranks a batch of source transactions, fetching each
// source's candidates through its own date window.
func (l *Ledgermatch) SuggestMatchesBatch(ctx context.Context, sources []model.SourceTransaction) (*model.BatchRankingResult, error) {
	return l.Ranker().RankMatchesBatch(ctx, sources, func(ctx context.Context, source model.SourceTransaction, _ int) ([]model.TargetTransaction, error) {
		start, end := DateSearchWindow(source.Date, dateTolerance)
		return l.datasource.GetCandidateTransactions(ctx, "", start, end)
	})
}

// rateCacheEntry distinguishes a cached "no rate exists" answer from a
// cache miss. Cached is always true on stored entries; the zero value
// signals a miss since Cache.Get leaves data untouched on one.
type rateCacheEntry struct {
	Cached bool           `json:"cached"`
	Found  bool           `json:"found"`
	Rate   model.RateInfo `json:"rate"`
}

// cachedRateSource memoizes rate-store lookups in redis. Historical rates
// are immutable once synced, so the TTL only guards against late backfills.
type cachedRateSource struct {
	inner RateSource
	cache cache.Cache
}

func (c *cachedRateSource) GetRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error) {
	key := "rate:exact:" + rateCacheKey(fromCurrency, toCurrency, date)
	return c.lookup(ctx, key, func() (*model.RateInfo, error) {
		return c.inner.GetRate(ctx, fromCurrency, toCurrency, date)
	})
}

func (c *cachedRateSource) GetNearestRateBefore(ctx context.Context, fromCurrency, toCurrency string, date, earliest time.Time) (*model.RateInfo, error) {
	key := "rate:before:" + rateCacheKey(fromCurrency, toCurrency, date)
	return c.lookup(ctx, key, func() (*model.RateInfo, error) {
		return c.inner.GetNearestRateBefore(ctx, fromCurrency, toCurrency, date, earliest)
	})
}

func (c *cachedRateSource) GetNearestRateAfter(ctx context.Context, fromCurrency, toCurrency string, date, latest time.Time) (*model.RateInfo, error) {
	key := "rate:after:" + rateCacheKey(fromCurrency, toCurrency, date)
	return c.lookup(ctx, key, func() (*model.RateInfo, error) {
		return c.inner.GetNearestRateAfter(ctx, fromCurrency, toCurrency, date, latest)
	})
}

func (c *cachedRateSource) lookup(ctx context.Context, key string, fetch func() (*model.RateInfo, error)) (*model.RateInfo, error) {
	var entry rateCacheEntry
	if err := c.cache.Get(ctx, key, &entry); err == nil && entry.Cached {
		if !entry.Found {
			return nil, nil
		}
		rate := entry.Rate
		return &rate, nil
	}

	rate, err := fetch()
	if err != nil {
		return nil, err
	}

	entry = rateCacheEntry{Cached: true, Found: rate != nil}
	if rate != nil {
		entry.Rate = *rate
	}
	if cacheErr := c.cache.Set(ctx, key, entry, rateCacheTTL); cacheErr != nil {
		logrus.Warnf("failed to cache rate lookup %s: %v", key, cacheErr)
	}

	return rate, nil
}
