// Package main is the entry point for the prosora CLI: the brainstorming
// server plus a few offline tools over the intelligence engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shubh-37/prosora/config"
	"github.com/shubh-37/prosora/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "prosora",
	Short:   "Product intelligence context engine for brainstorming sessions",
	Version: version,
	Long: `prosora tracks what a brainstorming session has learned across turns
(domain, stage, insights, decisions) and feeds it back into every LLM prompt.

Run "prosora serve" for the HTTP API and Slack transport, or "prosora chat"
for a terminal session.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./prosora.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(serveCmd, chatCmd, classifyCmd, frameworksCmd, suggestCmd)
}

// loadConfig reads configuration honouring the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, interactive bool) (*zap.Logger, error) {
	if interactive {
		return logging.NewDevelopment(cfg.LogLevel)
	}
	return logging.New(cfg.LogLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
