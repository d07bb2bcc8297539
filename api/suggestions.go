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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ledgermatch/ledgermatch"
	apimodel "github.com/ledgermatch/ledgermatch/api/model"
	"github.com/ledgermatch/ledgermatch/model"
)

// SuggestMatches ranks a source transaction against ledger candidates
// fetched from its date search window.
func (a Api) SuggestMatches(c *gin.Context) {
	var req apimodel.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := req.Source.ToSource()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion, err := a.engine.SuggestMatches(c.Request.Context(), source)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank match suggestions"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// RankMatches ranks a source transaction against an explicit candidate
// list supplied by the caller.
func (a Api) RankMatches(c *gin.Context) {
	var req apimodel.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := req.Source.ToSource()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targets := make([]model.TargetTransaction, 0, len(req.Targets))
	for _, t := range req.Targets {
		target, err := t.ToTarget()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		targets = append(targets, target)
	}

	suggestion, err := a.engine.Ranker().RankMatches(c.Request.Context(), source, targets)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank matches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestion":       suggestion,
		"can_auto_approve": ledgermatch.CanAutoApprove(suggestion),
	})
}

// RankMatchesBatch ranks many source transactions in one call.
func (a Api) RankMatchesBatch(c *gin.Context) {
	var req apimodel.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sources := make([]model.SourceTransaction, 0, len(req.Sources))
	for _, s := range req.Sources {
		source, err := s.ToSource()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sources = append(sources, source)
	}

	batch, err := a.engine.SuggestMatchesBatch(c.Request.Context(), sources)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank batch"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// GetVendorAliases returns the alias table the vendor matcher is using.
func (a Api) GetVendorAliases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"aliases": a.engine.VendorAliases()})
}

// AddVendorAliases merges caller-supplied aliases into the vendor matcher.
func (a Api) AddVendorAliases(c *gin.Context) {
	var req apimodel.AliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.engine.AddVendorAliases(req.Aliases)
	logrus.WithField("vendors", len(req.Aliases)).Info("vendor aliases updated")

	c.JSON(http.StatusOK, gin.H{"aliases": a.engine.VendorAliases()})
}

// ExtractVendor pulls the merchant name out of a raw statement description.
func (a Api) ExtractVendor(c *gin.Context) {
	var req apimodel.ExtractVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": ledgermatch.ExtractVendorFromDescription(req.Description)})
}
