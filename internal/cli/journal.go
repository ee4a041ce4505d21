package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mindfulflow/mindfulflow/internal/app/achievement"
	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/daemon"
	"github.com/mindfulflow/mindfulflow/internal/domain"
)

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)

	for _, c := range []*cobra.Command{logCmd, editCmd} {
		c.Flags().StringP("tags", "t", "", "comma-separated tag ids, e.g. sleep,work")
		c.Flags().StringP("diary", "d", "", "diary text")
		c.Flags().Float64P("sleep", "s", 0, "hours slept")
		c.Flags().String("at", "", "timestamp (RFC 3339 or 2006-01-02 15:04), default now")
	}
	editCmd.Flags().Float64P("mood", "m", 0, "new mood 1-5")

	journalCmd.Flags().IntP("mood", "m", 0, "only entries with this mood level")
	journalCmd.Flags().String("tag", "", "only entries with this tag id")
	journalCmd.Flags().IntP("limit", "n", 20, "maximum entries (0 = all)")
	journalCmd.Flags().Bool("asc", false, "oldest first")
}

// ─── log ────────────────────────────────────────────────────────────────────

var logCmd = &cobra.Command{
	Use:   "log MOOD",
	Short: "Record how you feel (1 = bad ... 5 = great)",
	Example: `  mindfulflow log 4 --tags sleep,family --sleep 7.5
  mindfulflow log 2 -d "long day at work" -t work`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	mood, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("mood %q: want a number from 1 to 5", args[0])
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	raw := domain.RawEntry{Mood: mood}
	applyEntryFlags(cmd, &raw)

	res, err := app.Journal.Record(cmd.Context(), raw)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	e := res.Entry
	fmt.Fprintf(out, "✅ Logged %s (%.1f) at %s  [%s]\n",
		domain.MoodLabel(e.Mood), e.Mood, e.Timestamp.In(app.Location).Format("2006-01-02 15:04"), shortID(e.ID))
	printUnlocked(cmd, res.Unlocked)
	return nil
}

// ─── journal ────────────────────────────────────────────────────────────────

var journalCmd = &cobra.Command{
	Use:     "journal",
	Aliases: []string{"ls"},
	Short:   "Show the journal timeline",
	Args:    cobra.NoArgs,
	RunE:    runJournal,
}

func runJournal(cmd *cobra.Command, args []string) error {
	mood, _ := cmd.Flags().GetInt("mood")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")
	asc, _ := cmd.Flags().GetBool("asc")
	if mood < 0 || mood > domain.MaxMood {
		return fmt.Errorf("--mood: want a level from 1 to 5")
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	entries, err := app.Journal.List(ctx, journal.Filter{Mood: mood, Tag: tag, Limit: limit, Newest: !asc})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries yet. Record one with: mindfulflow log 4")
		return nil
	}

	catalog, err := app.Journal.Tags(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tMOOD\tSLEEP\tTAGS\tDIARY")
	for _, e := range entries {
		labels := make([]string, len(e.Tags))
		for i, id := range e.Tags {
			labels[i] = catalog.Resolve(id).Label
		}
		sleep := "-"
		if e.Sleep != nil {
			sleep = strconv.FormatFloat(*e.Sleep, 'f', -1, 64) + "h"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID),
			e.Timestamp.In(app.Location).Format("2006-01-02 15:04"),
			domain.MoodLabel(e.Mood),
			sleep,
			strings.Join(labels, ", "),
			truncate(e.Diary, 40),
		)
	}
	return tw.Flush()
}

// ─── edit ───────────────────────────────────────────────────────────────────

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change an entry; only the given flags are modified",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	id, err := resolveID(ctx, app, args[0])
	if err != nil {
		return err
	}
	old, err := app.Journal.Get(ctx, id)
	if err != nil {
		return err
	}

	raw := old.ToRaw()
	raw.ID = nil
	if cmd.Flags().Changed("mood") {
		raw.Mood, _ = cmd.Flags().GetFloat64("mood")
	}
	applyEntryFlags(cmd, &raw)

	res, err := app.Journal.Update(ctx, id, raw)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated %s: %s (%.1f)\n", shortID(id), domain.MoodLabel(res.Entry.Mood), res.Entry.Mood)
	printUnlocked(cmd, res.Unlocked)
	return nil
}

// ─── rm ─────────────────────────────────────────────────────────────────────

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	id, err := resolveID(ctx, app, args[0])
	if err != nil {
		return err
	}
	if err := app.Journal.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", shortID(id))
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// applyEntryFlags copies the changed entry flags onto raw.
func applyEntryFlags(cmd *cobra.Command, raw *domain.RawEntry) {
	f := cmd.Flags()
	if f.Changed("tags") {
		tags, _ := f.GetString("tags")
		raw.Tags = splitTags(tags)
		raw.Activities = nil
		if raw.Tags == nil {
			raw.Tags = []string{}
		}
	}
	if f.Changed("diary") {
		raw.Diary, _ = f.GetString("diary")
	}
	if f.Changed("sleep") {
		h, _ := f.GetFloat64("sleep")
		raw.Sleep = &h
	}
	if f.Changed("at") {
		raw.Timestamp, _ = f.GetString("at")
	}
}

// resolveID expands a unique id prefix, as shown by the journal table.
func resolveID(ctx context.Context, app *daemon.App, prefix string) (string, error) {
	if _, err := app.Journal.Get(ctx, prefix); err == nil {
		return prefix, nil
	}
	entries, err := app.Journal.History(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, e := range entries {
		if !strings.HasPrefix(e.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
		}
		match = e.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrEntryNotFound, prefix)
	}
	return match, nil
}

// printUnlocked announces newly unlocked achievements.
func printUnlocked(cmd *cobra.Command, ids []string) {
	for _, id := range ids {
		for _, def := range achievement.Definitions() {
			if def.ID == id {
				fmt.Fprintf(cmd.OutOrStdout(), "🏆 Achievement unlocked: %s (%s)\n", def.Title, def.Description)
			}
		}
	}
}
