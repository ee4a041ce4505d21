package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindfulflow/mindfulflow/internal/app/stats"
	"github.com/mindfulflow/mindfulflow/internal/domain"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(reportCmd)

	for _, c := range []*cobra.Command{statsCmd, insightsCmd} {
		c.Flags().StringP("range", "r", "", `days to include: 7, 30 or "all" (default from [stats] default_range_days)`)
	}
	reportCmd.Flags().Int("month", 0, "month 1-12 (default current)")
	reportCmd.Flags().Int("year", 0, "year (default current)")
}

// ─── stats ──────────────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the statistics dashboard",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	days, err := parseRange(cmd, app.Config.Stats.DefaultRangeDays)
	if err != nil {
		return err
	}
	ds, err := app.Journal.Dataset(cmd.Context())
	if err != nil {
		return err
	}
	sum := stats.Summarize(ds.Entries, stats.Options{Now: ds.Now, RangeDays: days, Catalog: ds.Catalog})
	if jsonOutput {
		return printJSON(cmd, sum)
	}

	out := cmd.OutOrStdout()
	period := "all time"
	if days > 0 {
		period = fmt.Sprintf("last %d days", days)
	}
	fmt.Fprintf(out, "📊 MindfulFlow statistics (%s)\n\n", period)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Entries\t%d\n", sum.Mood.Total)
	fmt.Fprintf(tw, "Average mood\t%.1f\n", sum.Mood.Average)
	if sum.Mood.MostFrequent != nil {
		fmt.Fprintf(tw, "Most frequent\t%s\n", domain.MoodLabel(float64(*sum.Mood.MostFrequent)))
	}
	fmt.Fprintf(tw, "Trend\t%s\n", sum.Mood.Trend)
	fmt.Fprintf(tw, "Stability\t%d%%\n", sum.Mood.Stability)
	fmt.Fprintf(tw, "Active days\t%d\n", sum.ActiveDays)
	if sum.AverageSleep > 0 {
		fmt.Fprintf(tw, "Average sleep\t%.1fh\n", sum.AverageSleep)
	}
	fmt.Fprintf(tw, "Current streak\t%d days\n", sum.CurrentStreak)
	fmt.Fprintf(tw, "Longest streak\t%d days\n", sum.LongestStreak)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(sum.Distribution) > 0 {
		fmt.Fprintln(out, "\nMood distribution")
		for _, lc := range sum.Distribution {
			fmt.Fprintf(out, "  %-9s %s %d\n", lc.Label, strings.Repeat("█", barWidth(lc.Count, sum.Mood.Total)), lc.Count)
		}
	}

	fmt.Fprintln(out, "\nActivities")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, a := range sum.Activities {
		if a.Count == 0 {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d entries\tavg %.1f\n", a.Label, a.Count, a.Average)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printInsights(cmd, sum.Insights)
	return nil
}

// ─── streak ─────────────────────────────────────────────────────────────────

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current and longest daily streak",
	Args:  cobra.NoArgs,
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.Journal.History(cmd.Context())
	if err != nil {
		return err
	}
	now := app.Journal.Now()
	current := stats.CurrentStreak(entries, now)
	longest := stats.LongestStreak(entries, now.Location())

	if jsonOutput {
		return printJSON(cmd, map[string]int{"current": current, "longest": longest})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🔥 Current streak: %d days\n🏅 Longest streak: %d days\n", current, longest)
	return nil
}

// ─── insights ───────────────────────────────────────────────────────────────

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show which activities lift or lower your mood",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

func runInsights(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	days, err := parseRange(cmd, app.Config.Stats.DefaultRangeDays)
	if err != nil {
		return err
	}
	ds, err := app.Journal.Dataset(cmd.Context())
	if err != nil {
		return err
	}
	insights := stats.Insights(stats.FilterRange(ds.Entries, ds.Now, days), ds.Catalog)
	if jsonOutput {
		if insights == nil {
			insights = []stats.Insight{}
		}
		return printJSON(cmd, insights)
	}
	if len(insights) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No insights yet. Keep logging: at least %d entries and %d per tag are needed.\n",
			stats.MinInsightEntries, stats.MinTagSamples)
		return nil
	}
	printInsights(cmd, insights)
	return nil
}

// ─── report ─────────────────────────────────────────────────────────────────

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the monthly digest",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ds, err := app.Journal.Dataset(cmd.Context())
	if err != nil {
		return err
	}
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	if month == 0 {
		month = int(ds.Now.Month())
	}
	if year == 0 {
		year = ds.Now.Year()
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("--month: want 1 to 12, got %d", month)
	}

	report := stats.MonthlyReport(ds.Entries, time.Month(month), year, ds.Now.Location(), ds.Catalog)
	if jsonOutput {
		return printJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	if report == nil {
		fmt.Fprintf(out, "No entries in %s %d.\n", time.Month(month), year)
		return nil
	}
	fmt.Fprintf(out, "🗓️  %s %d\n\n", report.Month, report.Year)
	fmt.Fprintf(out, "Entries:       %d\n", report.TotalEntries)
	fmt.Fprintf(out, "Average mood:  %.1f (%s)\n", report.AverageMood, domain.MoodLabel(report.AverageMood))
	fmt.Fprintf(out, "Best day:      %s (%s)\n", report.BestDayDate, domain.MoodLabel(report.BestDayMood))
	if len(report.TopTags) > 0 {
		fmt.Fprintln(out, "Top activities:")
		for i, t := range report.TopTags {
			if t.Count == 0 {
				continue
			}
			fmt.Fprintf(out, "  %d. %s (%d, avg %.1f)\n", i+1, t.Label, t.Count, t.Average)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// parseRange reads --range, falling back to def.
func parseRange(cmd *cobra.Command, def int) (int, error) {
	v, _ := cmd.Flags().GetString("range")
	switch v {
	case "":
		return def, nil
	case "all":
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("--range: want a positive number of days or \"all\", got %q", v)
	}
	return n, nil
}

func printInsights(cmd *cobra.Command, insights []stats.Insight) {
	if len(insights) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nInsights")
	for _, in := range insights {
		mark := "↑"
		if in.Type == stats.InsightNegative {
			mark = "↓"
		}
		fmt.Fprintf(out, "  %s %s: %s\n", mark, in.Title, in.Text)
	}
}

// barWidth scales n of total to a bar of at most 30 cells.
func barWidth(n, total int) int {
	if total == 0 || n == 0 {
		return 0
	}
	w := n * 30 / total
	if w == 0 {
		w = 1
	}
	return w
}
