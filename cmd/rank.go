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

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgermatch/ledgermatch"
	apimodel "github.com/ledgermatch/ledgermatch/api/model"
	"github.com/ledgermatch/ledgermatch/model"
)

// rankCommands returns the Cobra command for one-shot ranking of a source
// transaction against candidates read from a JSON file.
func rankCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank [file]",
		Short: "rank candidates from a JSON file against a source transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				log.Fatalf("error reading input file: %v", err)
			}

			var req apimodel.RankRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Fatalf("error parsing input file: %v", err)
			}
			if err := req.Validate(); err != nil {
				log.Fatalf("invalid input: %v", err)
			}

			source, err := req.Source.ToSource()
			if err != nil {
				log.Fatalf("invalid source date: %v", err)
			}
			targets := make([]model.TargetTransaction, 0, len(req.Targets))
			for _, t := range req.Targets {
				target, err := t.ToTarget()
				if err != nil {
					log.Fatalf("invalid target date: %v", err)
				}
				targets = append(targets, target)
			}

			suggestion, err := app.engine.Ranker().RankMatches(cmd.Context(), source, targets)
			if err != nil {
				log.Fatalf("error ranking candidates: %v", err)
			}

			fmt.Println(ledgermatch.FormatSuggestion(suggestion))
		},
	}

	return cmd
}
