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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port string `json:"port" envconfig:"LEDGERMATCH_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"LEDGERMATCH_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"LEDGERMATCH_REDIS_DNS"`
}

// MatchingConfig carries the tunable thresholds of the match engine. Zero
// values fall back to the engine defaults in validateAndAddDefaults.
type MatchingConfig struct {
	MinMatchScore          int  `json:"min_match_score" envconfig:"LEDGERMATCH_MIN_MATCH_SCORE"`
	AutoMatchThreshold     int  `json:"auto_match_threshold" envconfig:"LEDGERMATCH_AUTO_MATCH_THRESHOLD"`
	ClearWinnerGap         int  `json:"clear_winner_gap" envconfig:"LEDGERMATCH_CLEAR_WINNER_GAP"`
	MaxSuggestions         int  `json:"max_suggestions" envconfig:"LEDGERMATCH_MAX_SUGGESTIONS"`
	MaxDaysDiff            int  `json:"max_days_diff" envconfig:"LEDGERMATCH_MAX_DAYS_DIFF"`
	MinVendorSimilarity    int  `json:"min_vendor_similarity" envconfig:"LEDGERMATCH_MIN_VENDOR_SIMILARITY"`
	RateMaxDaysBack        int  `json:"rate_max_days_back" envconfig:"LEDGERMATCH_RATE_MAX_DAYS_BACK"`
	DisableApproximateRate bool `json:"disable_approximate_rate" envconfig:"LEDGERMATCH_DISABLE_APPROXIMATE_RATE"`
}

type Configuration struct {
	ProjectName string           `json:"project_name" envconfig:"LEDGERMATCH_PROJECT_NAME"`
	Server      ServerConfig     `json:"server"`
	DataSource  DataSourceConfig `json:"data_source"`
	Redis       RedisConfig      `json:"redis"`
	Matching    MatchingConfig   `json:"matching"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("ledgermatch", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called ledgermatch.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Ledgermatch Match Engine"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Matching.MinMatchScore == 0 {
		cnf.Matching.MinMatchScore = 55
	}
	if cnf.Matching.AutoMatchThreshold == 0 {
		cnf.Matching.AutoMatchThreshold = 90
	}
	if cnf.Matching.ClearWinnerGap == 0 {
		cnf.Matching.ClearWinnerGap = 10
	}
	if cnf.Matching.MaxSuggestions == 0 {
		cnf.Matching.MaxSuggestions = 3
	}
	if cnf.Matching.MaxDaysDiff == 0 {
		cnf.Matching.MaxDaysDiff = 3
	}
	if cnf.Matching.MinVendorSimilarity == 0 {
		cnf.Matching.MinVendorSimilarity = 60
	}
	if cnf.Matching.RateMaxDaysBack == 0 {
		cnf.Matching.RateMaxDaysBack = 30
	}

	// Trim whitespace from connection strings
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	err := mockConfig.validateAndAddDefaults()
	if err != nil {
		log.Printf("Error setting mock config: %v", err)
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
