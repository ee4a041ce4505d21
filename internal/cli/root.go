// Package cli implements the mindfulflow command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindfulflow/mindfulflow/internal/daemon"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "mindfulflow",
	Short: "MindfulFlow: a private mood journal with statistics",
	Long: `MindfulFlow records how you feel, what you did and how you slept, and
turns the history into streaks, averages, tag correlations and monthly
reports. Data stays in a local SQLite database under ~/.mindfulflow
(override with $MINDFULFLOW_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $MINDFULFLOW_HOME/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// loadConfig reads the config selected by --config.
func loadConfig() (daemon.Config, error) {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openApp loads the config and opens the journal. The caller must Close it.
func openApp(cmd *cobra.Command) (*daemon.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := daemon.NewLogger(cfg.Log, cmd.ErrOrStderr())
	return daemon.Open(cfg, logger)
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitTags parses a comma-separated tag list.
func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// truncate shortens s to maxLen runes on a single line.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}

// shortID abbreviates an entry id for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
