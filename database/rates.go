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

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/ledgermatch/ledgermatch/model"
)

// GetRate retrieves the exchange rate for the exact date. Returns (nil, nil)
// when no rate row exists for that day.
func (d Datasource) GetRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*model.RateInfo, error) {
	ctx, span := otel.Tracer("Rates").Start(ctx, "Fetching exact-date rate from db")
	defer span.End()

	var rate float64
	var rateDate time.Time
	err := d.Conn.QueryRowContext(ctx, `
		SELECT rate, date
		FROM ledgermatch.exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date = $3
	`, fromCurrency, toCurrency, date).Scan(&rate, &rateDate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch exchange rate")
	}

	return &model.RateInfo{Rate: rate, Date: rateDate, IsExact: true}, nil
}

// GetNearestRateBefore retrieves the most recent rate in [earliest, date),
// preferring later dates. Returns (nil, nil) when the window is empty.
func (d Datasource) GetNearestRateBefore(ctx context.Context, fromCurrency, toCurrency string, date, earliest time.Time) (*model.RateInfo, error) {
	ctx, span := otel.Tracer("Rates").Start(ctx, "Searching backward for nearest rate")
	defer span.End()

	var rate float64
	var rateDate time.Time
	err := d.Conn.QueryRowContext(ctx, `
		SELECT rate, date
		FROM ledgermatch.exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date >= $3 AND date < $4
		ORDER BY date DESC
		LIMIT 1
	`, fromCurrency, toCurrency, earliest, date).Scan(&rate, &rateDate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to search backward for exchange rate")
	}

	return &model.RateInfo{Rate: rate, Date: rateDate, IsExact: false}, nil
}

// GetNearestRateAfter retrieves the earliest rate in (date, latest],
// preferring earlier dates. Returns (nil, nil) when the window is empty.
func (d Datasource) GetNearestRateAfter(ctx context.Context, fromCurrency, toCurrency string, date, latest time.Time) (*model.RateInfo, error) {
	ctx, span := otel.Tracer("Rates").Start(ctx, "Searching forward for nearest rate")
	defer span.End()

	var rate float64
	var rateDate time.Time
	err := d.Conn.QueryRowContext(ctx, `
		SELECT rate, date
		FROM ledgermatch.exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date > $3 AND date <= $4
		ORDER BY date ASC
		LIMIT 1
	`, fromCurrency, toCurrency, date, latest).Scan(&rate, &rateDate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to search forward for exchange rate")
	}

	return &model.RateInfo{Rate: rate, Date: rateDate, IsExact: false}, nil
}

// GetRatesInRange retrieves all rates for a currency pair inside a window,
// ordered by date ascending.
func (d Datasource) GetRatesInRange(ctx context.Context, fromCurrency, toCurrency string, start, end time.Time) ([]*model.ExchangeRate, error) {
	ctx, span := otel.Tracer("Rates").Start(ctx, "Fetching rates in range from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, from_currency, to_currency, rate, date, created_at
		FROM ledgermatch.exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date >= $3 AND date <= $4
		ORDER BY date ASC
	`, fromCurrency, toCurrency, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch rates in range")
	}
	defer rows.Close()

	var rates []*model.ExchangeRate
	for rows.Next() {
		rate := &model.ExchangeRate{}
		err = rows.Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.Date, &rate.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan rate row")
		}
		rates = append(rates, rate)
	}

	return rates, rows.Err()
}
