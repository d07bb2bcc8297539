package database

import (
	"context"
	"time"

	"github.com/ledgermatch/ledgermatch/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	exchangeRate // Interface for historical exchange-rate reads
	transaction  // Interface for ledger candidate lookups
}

// exchangeRate defines the read-side contract against the historical rate
// table. The table is populated by an external sync job; the engine only
// consumes it. All lookups return (nil, nil) when no row exists.
type exchangeRate interface {
	GetRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error)                            // Rate for the exact date
	GetNearestRateBefore(ctx context.Context, fromCurrency, toCurrency string, date, earliest time.Time) (*model.RateInfo, error)     // Most recent rate in [earliest, date)
	GetNearestRateAfter(ctx context.Context, fromCurrency, toCurrency string, date, latest time.Time) (*model.RateInfo, error)        // Earliest rate in (date, latest]
	GetRatesInRange(ctx context.Context, fromCurrency, toCurrency string, start, end time.Time) ([]*model.ExchangeRate, error)        // All rates in a window, ordered by date
}

// transaction defines methods for fetching ledger candidates.
type transaction interface {
	GetCandidateTransactions(ctx context.Context, currency string, start, end time.Time) ([]model.TargetTransaction, error) // Candidates inside a date window
	GetTransactionByID(ctx context.Context, id string) (*model.TargetTransaction, error)                                    // Single candidate by ID
}
