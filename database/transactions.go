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

// GetCandidateTransactions fetches ledger transactions inside an inclusive
// date window, optionally filtered by currency. This is the candidate pool
// the match engine scores a source transaction against; the engine imposes
// no further filtering contract.
func (d Datasource) GetCandidateTransactions(ctx context.Context, currency string, start, end time.Time) ([]model.TargetTransaction, error) {
	ctx, span := otel.Tracer("Transactions").Start(ctx, "Fetching candidate transactions from db")
	defer span.End()

	query := `
		SELECT transaction_id, amount, currency, date, vendor, COALESCE(description, '')
		FROM ledgermatch.transactions
		WHERE date >= $1 AND date <= $2`
	args := []interface{}{start, end}

	if currency != "" {
		query += ` AND UPPER(currency) = UPPER($3)`
		args = append(args, currency)
	}
	query += ` ORDER BY date ASC, transaction_id ASC`

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch candidate transactions")
	}
	defer rows.Close()

	var candidates []model.TargetTransaction
	for rows.Next() {
		var txn model.TargetTransaction
		err = rows.Scan(&txn.TargetID, &txn.Amount, &txn.Currency, &txn.Date, &txn.Vendor, &txn.Description)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan candidate transaction")
		}
		candidates = append(candidates, txn)
	}

	return candidates, rows.Err()
}

// GetTransactionByID retrieves a single ledger transaction. Returns
// (nil, nil) when no row exists.
func (d Datasource) GetTransactionByID(ctx context.Context, id string) (*model.TargetTransaction, error) {
	ctx, span := otel.Tracer("Transactions").Start(ctx, "Fetching transaction from db")
	defer span.End()

	txn := &model.TargetTransaction{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, amount, currency, date, vendor, COALESCE(description, '')
		FROM ledgermatch.transactions
		WHERE transaction_id = $1
	`, id).Scan(&txn.TargetID, &txn.Amount, &txn.Currency, &txn.Date, &txn.Vendor, &txn.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transaction")
	}

	return txn, nil
}
