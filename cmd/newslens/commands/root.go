package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newslens",
	Short: "NewsLens - 금융 뉴스 수집/분석 파이프라인",
	Long: `NewsLens Unified CLI

RSS 금융 뉴스를 수집하고 LLM으로 구조화한 뒤
시장 수익률과 결합해 질의응답까지 제공하는 파이프라인.

Usage:
  go run ./cmd/newslens [command]

Examples:
  go run ./cmd/newslens collect all
  go run ./cmd/newslens enrich
  go run ./cmd/newslens run new
  go run ./cmd/newslens ask "What happened to NVDA recently?"
  go run ./cmd/newslens api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
