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

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ledgermatch/ledgermatch/model"
)

// TransactionRequest is the wire form of a transaction in match requests.
type TransactionRequest struct {
	ID          string  `json:"id,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description,omitempty"`
}

func (t TransactionRequest) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Amount, validation.Required),
		validation.Field(&t.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&t.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&t.Vendor, validation.Required),
	)
}

// ToSource converts the request into an engine source transaction.
func (t TransactionRequest) ToSource() (model.SourceTransaction, error) {
	date, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return model.SourceTransaction{}, err
	}
	return model.SourceTransaction{
		Amount:      t.Amount,
		Currency:    t.Currency,
		Date:        date,
		Vendor:      t.Vendor,
		Description: t.Description,
	}, nil
}

// ToTarget converts the request into an engine target transaction.
func (t TransactionRequest) ToTarget() (model.TargetTransaction, error) {
	date, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return model.TargetTransaction{}, err
	}
	return model.TargetTransaction{
		TargetID:    t.ID,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Date:        date,
		Vendor:      t.Vendor,
		Description: t.Description,
	}, nil
}

// SuggestRequest asks the engine to rank a source transaction against
// ledger candidates fetched from its date window.
type SuggestRequest struct {
	Source TransactionRequest `json:"source"`
}

func (r SuggestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.Required),
	)
}

// RankRequest asks the engine to rank a source transaction against an
// explicit candidate list.
type RankRequest struct {
	Source  TransactionRequest   `json:"source"`
	Targets []TransactionRequest `json:"targets"`
}

func (r RankRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.Required),
		validation.Field(&r.Targets, validation.Each(validation.By(func(value interface{}) error {
			txn, _ := value.(TransactionRequest)
			if err := txn.Validate(); err != nil {
				return err
			}
			return validation.Validate(txn.ID, validation.Required)
		}))),
	)
}

// BatchRequest asks the engine to rank many source transactions.
type BatchRequest struct {
	Sources []TransactionRequest `json:"sources"`
}

func (r BatchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Sources, validation.Required, validation.Length(1, 0)),
	)
}

// AliasRequest adds vendor aliases, keyed by canonical vendor name.
type AliasRequest struct {
	Aliases map[string][]string `json:"aliases"`
}

func (r AliasRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Aliases, validation.Required, validation.By(func(value interface{}) error {
			aliases, _ := value.(map[string][]string)
			for canonical, aliasList := range aliases {
				if len(aliasList) == 0 {
					return validation.NewError("validation_aliases", "alias list for "+canonical+" cannot be empty")
				}
			}
			return nil
		})),
	)
}

// ExtractVendorRequest asks for the merchant name inside a raw statement
// description.
type ExtractVendorRequest struct {
	Description string `json:"description"`
}

func (r ExtractVendorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required),
	)
}
