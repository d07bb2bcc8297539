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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ledgermatch/ledgermatch/config"
	"github.com/ledgermatch/ledgermatch/database/mocks"
	"github.com/ledgermatch/ledgermatch/model"
)

func newTestEngine(t *testing.T) (*Ledgermatch, *mocks.MockDataSource) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost:5432"},
	})

	mockDS := new(mocks.MockDataSource)
	engine, err := NewLedgermatch(mockDS)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}
	return engine, mockDS
}

func TestSuggestMatches(t *testing.T) {
	engine, mockDS := newTestEngine(t)
	ctx := context.Background()

	source := model.SourceTransaction{
		Amount:   2500,
		Currency: "USD",
		Date:     date(2025, 1, 10),
		Vendor:   "Landlord Inc",
	}

	start, end := DateSearchWindow(source.Date, 3)
	mockDS.On("GetCandidateTransactions", mock.Anything, "", start, end).Return([]model.TargetTransaction{
		{TargetID: "txn_rent", Amount: 2500, Currency: "USD", Date: date(2025, 1, 10), Vendor: "Landlord"},
		{TargetID: "txn_other", Amount: 80, Currency: "USD", Date: date(2025, 1, 11), Vendor: "Grocery Store"},
	}, nil)

	suggestion, err := engine.SuggestMatches(ctx, source)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusMatched, suggestion.Status)
	assert.Equal(t, "txn_rent", BestTargetID(suggestion))
	assert.True(t, CanAutoApprove(suggestion))

	mockDS.AssertExpectations(t)
}

func TestSuggestMatchesNoCandidates(t *testing.T) {
	engine, mockDS := newTestEngine(t)
	ctx := context.Background()

	mockDS.On("GetCandidateTransactions", mock.Anything, "", mock.Anything, mock.Anything).
		Return([]model.TargetTransaction{}, nil)

	suggestion, err := engine.SuggestMatches(ctx, model.SourceTransaction{
		Amount:   100,
		Currency: "USD",
		Date:     date(2025, 1, 10),
		Vendor:   "Starbucks",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusNoMatch, suggestion.Status)
	assert.False(t, suggestion.RequiresReview)
}

func TestSuggestMatchesCrossCurrency(t *testing.T) {
	engine, mockDS := newTestEngine(t)
	ctx := context.Background()

	day := date(2025, 1, 10)
	source := model.SourceTransaction{Amount: 100, Currency: "USD", Date: day, Vendor: "Starbucks"}

	mockDS.On("GetCandidateTransactions", mock.Anything, "", mock.Anything, mock.Anything).
		Return([]model.TargetTransaction{
			{TargetID: "txn_thb", Amount: 3500, Currency: "THB", Date: day, Vendor: "Starbucks"},
		}, nil)
	mockDS.On("GetRate", mock.Anything, "USD", "THB", day).
		Return(&model.RateInfo{Rate: 35, Date: day, IsExact: true}, nil)

	suggestion, err := engine.SuggestMatches(ctx, source)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusMatched, suggestion.Status)
	assert.NotNil(t, suggestion.BestMatch)
	assert.True(t, suggestion.BestMatch.IsCrossCurrency)
	assert.Equal(t, 100, suggestion.BestMatch.Score)

	mockDS.AssertExpectations(t)
}

func TestSuggestMatchesBatch(t *testing.T) {
	engine, mockDS := newTestEngine(t)
	ctx := context.Background()

	sources := []model.SourceTransaction{
		{Amount: 100, Currency: "USD", Date: date(2025, 1, 10), Vendor: "Starbucks"},
		{Amount: 75, Currency: "USD", Date: date(2025, 2, 1), Vendor: "Uber"},
	}

	start1, end1 := DateSearchWindow(sources[0].Date, 3)
	start2, end2 := DateSearchWindow(sources[1].Date, 3)

	mockDS.On("GetCandidateTransactions", mock.Anything, "", start1, end1).Return([]model.TargetTransaction{
		{TargetID: "txn_1", Amount: 100, Currency: "USD", Date: date(2025, 1, 10), Vendor: "Starbucks"},
	}, nil)
	mockDS.On("GetCandidateTransactions", mock.Anything, "", start2, end2).Return([]model.TargetTransaction{}, nil)

	batch, err := engine.SuggestMatchesBatch(ctx, sources)
	assert.NoError(t, err)
	assert.Len(t, batch.Results, 2)
	assert.Equal(t, 2, batch.Summary.Total)
	assert.Equal(t, 1, batch.Summary.Matched)
	assert.Equal(t, 1, batch.Summary.NoMatch)

	mockDS.AssertExpectations(t)
}

func TestCachedRateSource(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost:5432"},
		Redis:      config.RedisConfig{Dns: mr.Addr()},
	})

	mockDS := new(mocks.MockDataSource)
	engine, err := NewLedgermatch(mockDS)
	assert.NoError(t, err)

	ctx := context.Background()
	day := date(2025, 1, 10)

	// the store is hit once; the second lookup comes from redis
	mockDS.On("GetRate", mock.Anything, "USD", "THB", day).
		Return(&model.RateInfo{Rate: 35, Date: day, IsExact: true}, nil).Once()

	rate, err := engine.Converter().GetExchangeRate(ctx, "USD", "THB", day)
	assert.NoError(t, err)
	assert.Equal(t, 35.0, rate.Rate)

	rate, err = engine.Converter().GetExchangeRate(ctx, "USD", "THB", day)
	assert.NoError(t, err)
	assert.Equal(t, 35.0, rate.Rate)

	mockDS.AssertExpectations(t)
	mockDS.AssertNumberOfCalls(t, "GetRate", 1)
}

func TestCachedRateSourceNegativeCaching(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost:5432"},
		Redis:      config.RedisConfig{Dns: mr.Addr()},
	})

	mockDS := new(mocks.MockDataSource)
	engine, err := NewLedgermatch(mockDS)
	assert.NoError(t, err)

	ctx := context.Background()
	day := date(2025, 1, 10)

	// "no rate exists" is itself cached, so each store method fires once
	mockDS.On("GetRate", mock.Anything, "USD", "XYZ", day).Return(nil, nil).Once()
	mockDS.On("GetNearestRateBefore", mock.Anything, "USD", "XYZ", day, mock.Anything).Return(nil, nil).Once()
	mockDS.On("GetNearestRateAfter", mock.Anything, "USD", "XYZ", day, mock.Anything).Return(nil, nil).Once()

	rate, err := engine.Converter().GetExchangeRate(ctx, "USD", "XYZ", day)
	assert.NoError(t, err)
	assert.Nil(t, rate)

	rate, err = engine.Converter().GetExchangeRate(ctx, "USD", "XYZ", day)
	assert.NoError(t, err)
	assert.Nil(t, rate)

	mockDS.AssertExpectations(t)
	mockDS.AssertNumberOfCalls(t, "GetRate", 1)
}

func TestAddVendorAliases(t *testing.T) {
	engine, _ := newTestEngine(t)

	source := model.SourceTransaction{
		Amount:   100,
		Currency: "USD",
		Date:     date(2025, 1, 10),
		Vendor:   "NFLX Digital",
	}
	target := model.TargetTransaction{
		TargetID: "txn_1",
		Amount:   100,
		Currency: "USD",
		Date:     date(2025, 1, 10),
		Vendor:   "Netflix",
	}

	before, err := engine.Scorer().CalculateMatchScore(context.Background(), source, target)
	assert.NoError(t, err)
	assert.NotEqual(t, model.VendorMatchAlias, before.Details.Vendor.MatchType)

	engine.AddVendorAliases(map[string][]string{"Netflix Inc": {"NFLX Digital"}})

	assert.Contains(t, engine.VendorAliases()["netflix"], "NFLX Digital")

	after, err := engine.Scorer().CalculateMatchScore(context.Background(), source, target)
	assert.NoError(t, err)
	assert.Equal(t, model.VendorMatchAlias, after.Details.Vendor.MatchType)
	assert.Equal(t, 95, after.Score)

	// returned table is a copy, mutating it does not leak back in
	engine.VendorAliases()["netflix"] = nil
	assert.Contains(t, engine.VendorAliases()["netflix"], "NFLX Digital")
}
