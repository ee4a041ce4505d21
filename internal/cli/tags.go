package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsRmCmd)
	rootCmd.AddCommand(achievementsCmd)

	tagsAddCmd.Flags().String("icon", "", "icon name (default Tag)")
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage activity tags",
	Long: `Built-in tags cannot be changed. Custom tags get an id of the form
custom_<n>; entries keep removed tag ids and show them as plain text.`,
}

// ─── tags list ──────────────────────────────────────────────────────────────

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom tags",
	Args:  cobra.NoArgs,
	RunE:  runTagsList,
}

func runTagsList(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	catalog, err := app.Journal.Tags(cmd.Context())
	if err != nil {
		return err
	}
	tags := catalog.Tags()
	if jsonOutput {
		return printJSON(cmd, tags)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tICON\tKIND")
	for _, t := range tags {
		kind := "built-in"
		if t.IsCustom() {
			kind = "custom"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Label, t.Icon, kind)
	}
	return tw.Flush()
}

// ─── tags add ───────────────────────────────────────────────────────────────

var tagsAddCmd = &cobra.Command{
	Use:   "add LABEL",
	Short: "Create a custom tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagsAdd,
}

func runTagsAdd(cmd *cobra.Command, args []string) error {
	icon, _ := cmd.Flags().GetString("icon")

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	tag, err := app.Journal.AddCustomTag(cmd.Context(), args[0], icon)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, tag)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Tag %q added as %s\n", tag.Label, tag.ID)
	return nil
}

// ─── tags rm ────────────────────────────────────────────────────────────────

var tagsRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a custom tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagsRm,
}

func runTagsRm(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Journal.RemoveCustomTag(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Tag %s removed\n", args[0])
	return nil
}

// ─── achievements ───────────────────────────────────────────────────────────

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievements and when they were unlocked",
	Args:  cobra.NoArgs,
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := app.Achievements.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, list)
	}

	out := cmd.OutOrStdout()
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	fmt.Fprintf(out, "Achievements (%d/%d)\n", unlocked, len(list))
	for _, a := range list {
		if a.Unlocked {
			fmt.Fprintf(out, "  🏆 %-12s %s  (unlocked %s)\n", a.Title, a.Description,
				a.UnlockedAt.In(app.Location).Format("2006-01-02"))
		} else {
			fmt.Fprintf(out, "  🔒 %-12s %s\n", a.Title, a.Description)
		}
	}
	return nil
}
