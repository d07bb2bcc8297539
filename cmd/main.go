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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ledgermatch/ledgermatch"
	"github.com/ledgermatch/ledgermatch/config"
	"github.com/ledgermatch/ledgermatch/database"
)

// App represents the CLI application, encapsulating the root Cobra command.
type App struct {
	cmd *cobra.Command
}

// appInstance holds the engine instance and its configuration.
type appInstance struct {
	engine *ledgermatch.Ledgermatch
	cnf    *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the engine before
// running any command.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("ledgermatch.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		db, err := database.NewDataSource(cnf)
		if err != nil {
			return fmt.Errorf("error getting datasource: %v", err)
		}

		engine, err := ledgermatch.NewLedgermatch(db)
		if err != nil {
			return fmt.Errorf("error creating engine: %v", err)
		}

		app.engine = engine
		app.cnf = cnf
		return nil
	}
}

// NewCLI creates the root command with all subcommands attached.
func NewCLI() *App {
	var app appInstance

	rootCmd := &cobra.Command{
		Use:   "ledgermatch",
		Short: "ledgermatch: transaction match suggestion engine",
	}
	rootCmd.PersistentPreRunE = preRun(&app)

	rootCmd.AddCommand(serverCommands(&app))
	rootCmd.AddCommand(rankCommands(&app))

	return &App{cmd: rootCmd}
}

func (a App) executeCLI() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
