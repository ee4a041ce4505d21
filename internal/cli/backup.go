package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindfulflow/mindfulflow/internal/app/backup"
	"github.com/mindfulflow/mindfulflow/internal/daemon"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	exportCmd.Flags().StringP("output", "o", "", `output file, "-" for stdout (default mindfulflow-backup-<date>.json)`)
	importCmd.Flags().BoolP("yes", "y", false, "replace the journal without asking")
	resetCmd.Flags().BoolP("yes", "y", false, "delete everything without asking")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

// ─── export ─────────────────────────────────────────────────────────────────

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON backup of every entry and achievement",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = backup.FileName(app.Journal.Now())
	}

	var buf bytes.Buffer
	if err := app.Backup.Export(cmd.Context(), &buf); err != nil {
		return err
	}
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Backup written to %s\n", path)
	return nil
}

// ─── import ─────────────────────────────────────────────────────────────────

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the journal with a backup file (\"-\" reads stdin)",
	Long: `Restore a backup written by export. Older backups that are a bare list of
entries are accepted too. Every current entry is replaced; achievements are
replaced only when the backup contains some.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open backup: %w", err)
		}
		defer f.Close()
		r = f
		if !confirm(cmd, "This replaces every entry in your journal. Continue?") {
			return fmt.Errorf("import cancelled")
		}
	} else if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("reading from stdin requires --yes")
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Backup.Import(cmd.Context(), r)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, res)
	}
	format := "versioned"
	if res.Legacy {
		format = "legacy"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d entries and %d achievements (%s backup)\n",
		res.Entries, res.Achievements, format)
	return nil
}

// ─── reset ──────────────────────────────────────────────────────────────────

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every entry, custom tag and achievement",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !confirm(cmd, "This permanently deletes your whole journal. Continue?") {
		return fmt.Errorf("reset cancelled")
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Journal.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "🗑️  Journal cleared")
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		home, err := daemon.HomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, daemon.ConfigFileName)
	}
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := daemon.WriteConfig(path, daemon.DefaultConfig()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Config written to %s\n", path)
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, cfg)
	}
	return daemon.EncodeConfig(cmd.OutOrStdout(), cfg)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// confirm asks a yes/no question unless --yes was given.
func confirm(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
