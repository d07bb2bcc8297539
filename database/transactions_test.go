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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetCandidateTransactions(t *testing.T) {
	datasource, mock := newTestDatasource(t)

	start := day(2025, 1, 7)
	end := day(2025, 1, 13)

	mock.ExpectQuery("SELECT transaction_id, amount, currency, date, vendor, COALESCE").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "amount", "currency", "date", "vendor", "description"}).
			AddRow("txn_1", 100.0, "USD", day(2025, 1, 9), "Starbucks", "POS PURCHASE").
			AddRow("txn_2", 250.0, "USD", day(2025, 1, 10), "Uber", ""))

	candidates, err := datasource.GetCandidateTransactions(context.Background(), "", start, end)
	assert.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, "txn_1", candidates[0].TargetID)
	assert.Equal(t, 100.0, candidates[0].Amount)
	assert.Equal(t, "Starbucks", candidates[0].Vendor)
	assert.Equal(t, "", candidates[1].Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCandidateTransactionsCurrencyFilter(t *testing.T) {
	datasource, mock := newTestDatasource(t)

	start := day(2025, 1, 7)
	end := day(2025, 1, 13)

	mock.ExpectQuery("SELECT transaction_id, amount, currency, date, vendor, COALESCE").
		WithArgs(start, end, "usd").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "amount", "currency", "date", "vendor", "description"}))

	candidates, err := datasource.GetCandidateTransactions(context.Background(), "usd", start, end)
	assert.NoError(t, err)
	assert.Empty(t, candidates)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionByID(t *testing.T) {
	datasource, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT transaction_id, amount, currency, date, vendor, COALESCE").
		WithArgs("txn_1").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "amount", "currency", "date", "vendor", "description"}).
			AddRow("txn_1", 100.0, "USD", day(2025, 1, 9), "Starbucks", "morning coffee"))

	txn, err := datasource.GetTransactionByID(context.Background(), "txn_1")
	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.Equal(t, "txn_1", txn.TargetID)
	assert.Equal(t, "morning coffee", txn.Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionByIDNotFound(t *testing.T) {
	datasource, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT transaction_id, amount, currency, date, vendor, COALESCE").
		WithArgs("txn_missing").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "amount", "currency", "date", "vendor", "description"}))

	txn, err := datasource.GetTransactionByID(context.Background(), "txn_missing")
	assert.NoError(t, err)
	assert.Nil(t, txn)

	assert.NoError(t, mock.ExpectationsWereMet())
}
