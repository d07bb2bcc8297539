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
	"github.com/gin-gonic/gin"

	"github.com/ledgermatch/ledgermatch"
)

// Api holds the router and the engine it serves.
type Api struct {
	engine *ledgermatch.Ledgermatch
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/matches/suggest", a.SuggestMatches)
	router.POST("/matches/rank", a.RankMatches)
	router.POST("/matches/rank/batch", a.RankMatchesBatch)
	router.POST("/vendors/extract", a.ExtractVendor)
	router.GET("/vendors/aliases", a.GetVendorAliases)
	router.POST("/vendors/aliases", a.AddVendorAliases)

	return a.router
}

func NewAPI(engine *ledgermatch.Ledgermatch) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{engine: engine, router: r}
}
