/*
Copyright © 2025 Your Name

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
package cmd

import (
	"fmt"
	"os"
	"time"

	"marketbrief/internal/config"
	"marketbrief/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marketbrief",
	Short: "Marketbrief scrapes financial news and structures it with a language model.",
	Long: `Marketbrief turns financial news pages into structured article records.

A run scrapes a section page for article text and hands the raw text to a
language model that extracts one record per article: summary, sentiment
score, key topics, and expected market impact. Records are loaded into
Postgres, falling back to a CSV backup when the store is unreachable.
Articles the model cannot structure become clearly marked placeholder
records, so a run always produces output.

Examples:
  # Run the full pipeline
  marketbrief run

  # Or run the stages individually
  marketbrief collect --max 5
  marketbrief structure
  marketbrief load

  # Render a briefing and browse the results
  marketbrief report
  marketbrief dashboard`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.marketbrief.yaml)")
}

// initConfig reads in the config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
}

// configDuration parses a duration value from configuration, using the
// fallback when the value is empty or malformed.
func configDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("Invalid duration in configuration", "value", value, "fallback", fallback.String())
		return fallback
	}
	return parsed
}
