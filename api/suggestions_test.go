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

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ledgermatch/ledgermatch"
	apimodel "github.com/ledgermatch/ledgermatch/api/model"
	"github.com/ledgermatch/ledgermatch/config"
	"github.com/ledgermatch/ledgermatch/database/mocks"
	"github.com/ledgermatch/ledgermatch/model"
)

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockDataSource) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost:5432"},
	})

	mockDS := new(mocks.MockDataSource)
	engine, err := ledgermatch.NewLedgermatch(mockDS)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	return NewAPI(engine).Router(), mockDS
}

func toPayload(t *testing.T, v interface{}) io.Reader {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Error marshalling payload: %s", err)
	}
	return bytes.NewBuffer(data)
}

func txnRequest(id string, amount float64, day, vendor string) apimodel.TransactionRequest {
	return apimodel.TransactionRequest{
		ID:       id,
		Amount:   amount,
		Currency: "USD",
		Date:     day,
		Vendor:   vendor,
	}
}

func TestRankMatchesEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	payload := apimodel.RankRequest{
		Source: txnRequest("", 100, "2025-01-10", "Starbucks"),
		Targets: []apimodel.TransactionRequest{
			txnRequest("txn_1", 100, "2025-01-10", "Starbucks"),
			txnRequest("txn_2", 500, "2025-01-12", "Uber"),
		},
	}

	var response struct {
		Suggestion     model.RankedSuggestion `json:"suggestion"`
		CanAutoApprove bool                   `json:"can_auto_approve"`
	}

	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/rank",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StatusMatched, response.Suggestion.Status)
	assert.True(t, response.CanAutoApprove)
	assert.Equal(t, "txn_1", response.Suggestion.BestMatch.TargetID)
}

func TestRankMatchesEndpointValidation(t *testing.T) {
	router, _ := setupRouter(t)

	// target without an ID
	payload := apimodel.RankRequest{
		Source: txnRequest("", 100, "2025-01-10", "Starbucks"),
		Targets: []apimodel.TransactionRequest{
			txnRequest("", 100, "2025-01-10", "Starbucks"),
		},
	}

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/rank",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, response, "error")

	// malformed date
	payload = apimodel.RankRequest{
		Source: txnRequest("", 100, "10/01/2025", "Starbucks"),
	}
	resp, err = SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/rank",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSuggestMatchesEndpoint(t *testing.T) {
	router, mockDS := setupRouter(t)

	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	mockDS.On("GetCandidateTransactions", mock.Anything, "", mock.Anything, mock.Anything).
		Return([]model.TargetTransaction{
			{TargetID: "txn_1", Amount: 100, Currency: "USD", Date: day, Vendor: "Starbucks"},
		}, nil)

	payload := apimodel.SuggestRequest{
		Source: txnRequest("", 100, "2025-01-10", "Starbucks"),
	}

	var response model.RankedSuggestion
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/suggest",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StatusMatched, response.Status)

	mockDS.AssertExpectations(t)
}

func TestRankMatchesBatchEndpoint(t *testing.T) {
	router, mockDS := setupRouter(t)

	mockDS.On("GetCandidateTransactions", mock.Anything, "", mock.Anything, mock.Anything).
		Return([]model.TargetTransaction{}, nil)

	payload := apimodel.BatchRequest{
		Sources: []apimodel.TransactionRequest{
			txnRequest("", 100, "2025-01-10", "Starbucks"),
			txnRequest("", 75, "2025-02-01", "Uber"),
		},
	}

	var response model.BatchRankingResult
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/rank/batch",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, response.Results, 2)
	assert.Equal(t, 2, response.Summary.NoMatch)
	assert.NotEmpty(t, response.BatchID)
}

func TestRankMatchesBatchEndpointEmpty(t *testing.T) {
	router, _ := setupRouter(t)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, apimodel.BatchRequest{}),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/matches/rank/batch",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExtractVendorEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	var response map[string]string
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, apimodel.ExtractVendorRequest{Description: "POS DEBIT STARBUCKS 12345 SEATTLE WA"}),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/vendors/extract",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "starbucks seattle", response["vendor"])
}

func TestVendorAliasEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	var listResponse struct {
		Aliases map[string][]string `json:"aliases"`
	}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  nil,
		Router:   router,
		Response: &listResponse,
		Method:   http.MethodGet,
		Route:    "/vendors/aliases",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, listResponse.Aliases["starbucks"], "sbux")
	assert.NotContains(t, listResponse.Aliases, "netflix")

	resp, err = SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, apimodel.AliasRequest{Aliases: map[string][]string{"Netflix Inc": {"NFLX Digital"}}}),
		Router:   router,
		Response: &listResponse,
		Method:   http.MethodPost,
		Route:    "/vendors/aliases",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, listResponse.Aliases["netflix"], "NFLX Digital")

	// the new alias now scores as an alias match, not fuzzy
	payload := apimodel.RankRequest{
		Source: txnRequest("", 100, "2025-01-10", "NFLX Digital"),
		Targets: []apimodel.TransactionRequest{
			txnRequest("txn_1", 100, "2025-01-10", "Netflix"),
		},
	}
	var rankResponse struct {
		Suggestion model.RankedSuggestion `json:"suggestion"`
	}
	resp, err = SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, payload),
		Router:   router,
		Response: &rankResponse,
		Method:   http.MethodPost,
		Route:    "/matches/rank",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StatusMatched, rankResponse.Suggestion.Status)
	assert.Equal(t, model.VendorMatchAlias, rankResponse.Suggestion.BestMatch.Details.Vendor.MatchType)
	assert.Equal(t, 95, rankResponse.Suggestion.BestMatch.Score)
}

func TestVendorAliasEndpointValidation(t *testing.T) {
	router, _ := setupRouter(t)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  toPayload(t, apimodel.AliasRequest{Aliases: map[string][]string{"Netflix": {}}}),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/vendors/aliases",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, response, "error")
}
