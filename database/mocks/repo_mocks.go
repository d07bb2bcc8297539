package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ledgermatch/ledgermatch/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Exchange rate methods

func (m *MockDataSource) GetRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateInfo), args.Error(1)
}

func (m *MockDataSource) GetNearestRateBefore(ctx context.Context, fromCurrency, toCurrency string, date, earliest time.Time) (*model.RateInfo, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date, earliest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateInfo), args.Error(1)
}

func (m *MockDataSource) GetNearestRateAfter(ctx context.Context, fromCurrency, toCurrency string, date, latest time.Time) (*model.RateInfo, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date, latest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateInfo), args.Error(1)
}

func (m *MockDataSource) GetRatesInRange(ctx context.Context, fromCurrency, toCurrency string, start, end time.Time) ([]*model.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ExchangeRate), args.Error(1)
}

// Transaction methods

func (m *MockDataSource) GetCandidateTransactions(ctx context.Context, currency string, start, end time.Time) ([]model.TargetTransaction, error) {
	args := m.Called(ctx, currency, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TargetTransaction), args.Error(1)
}

func (m *MockDataSource) GetTransactionByID(ctx context.Context, id string) (*model.TargetTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TargetTransaction), args.Error(1)
}
