package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zynapse/internal/app"
	"zynapse/internal/config"
	"zynapse/internal/synapse"
)

// Flags scoped to individual commands.
var (
	addContent string
	addTags    []string
	linkRel    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the knowledge base",
	Long: `Creates the data directory, a default configuration file, the notes
folder, and an empty search index. Safe to run on an existing setup.`,
	RunE: runInit,
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new note",
	Long: `Creates a note with the given title. Content comes from --content,
or from stdin when piped, or from your editor otherwise.

Example:
  zynapse add "Spaced repetition" --tags learning,memory`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a note",
	Long:  `Prints a note by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE:  runList,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search across notes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a note in your editor",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a note and its links",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var linkCmd = &cobra.Command{
	Use:   "link [from] [to]",
	Short: "Link two notes",
	Long: `Creates a weighted link between two notes. Linking the same pair
again strengthens the connection instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

var linksCmd = &cobra.Command{
	Use:   "links [id]",
	Short: "Show the links around a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinks,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the notes on disk",
	RunE:  runReindex,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zynapse %s\n", Version)
	},
}

func init() {
	addCmd.Flags().StringVar(&addContent, "content", "", "Note content (otherwise stdin or editor)")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "Comma-separated tags")
	linkCmd.Flags().StringVar(&linkRel, "relation", "relates-to", "Relation label for the link")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func openApp() (*app.App, error) {
	return app.Open(effectiveConfigPath())
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Zynapse %s - knowledge base for emergent thought\n\n", Version)

	path := effectiveConfigPath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "Not initialized. Run 'zynapse init' to get started.\n")
		return nil
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	notes, err := a.ListNotes()
	if err != nil {
		return err
	}
	linkCount, err := a.Links.Count()
	if err != nil {
		return err
	}
	indexed, err := a.Index.Count()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  Notes:   %d (%s)\n", len(notes), a.Config.Storage.RootPath)
	fmt.Fprintf(out, "  Links:   %d\n", linkCount)
	fmt.Fprintf(out, "  Indexed: %d\n", indexed)
	fmt.Fprintf(out, "\nRun 'zynapse tui' for the interactive interface.\n")
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := effectiveConfigPath()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if err := cfg.Save(path); err != nil {
			return err
		}
		logger.Info("wrote default config", zap.String("path", path))
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// Opening the app creates the index database and link schema.
	a, err := app.Open(path)
	if err != nil {
		return err
	}
	a.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized knowledge base at %s\n", config.DataDir())
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	content := addContent
	if content == "" {
		var err error
		content, err = readContent(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.AddNote(args[0], content, addTags)
	if err != nil {
		return err
	}
	logger.Info("added note", zap.String("id", n.ID), zap.Int("words", n.WordCount()))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", n.ID)
	return nil
}

// readContent takes note content from a pipe when stdin is not a
// terminal, and falls back to an interactive editor session.
func readContent(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
		cfg, err := config.Load(effectiveConfigPath())
		if err != nil {
			return "", err
		}
		return editInEditor(cfg.CLI.Editor, "")
	}
	// Non-file stdin (tests) is always read directly.
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.GetNote(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", n.Title)
	fmt.Fprintf(out, "id: %s  created: %s  modified: %s\n",
		n.ID, n.Created.Format("2006-01-02"), n.Modified.Format("2006-01-02"))
	if len(n.Tags) > 0 {
		fmt.Fprintf(out, "tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(out, "\n%s\n", n.Content)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	notes, err := a.ListNotes()
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notes yet. Try 'zynapse add'.")
		return nil
	}

	limit := a.Config.CLI.MaxListItems
	if len(notes) > limit {
		notes = notes[:limit]
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(n.ID), n.Modified.Format("2006-01-02"), n.Title,
			n.Summary(60))
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.SearchNotes(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(r.ID), r.Title, r.Snippet)
	}
	return w.Flush()
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.GetNote(args[0])
	if err != nil {
		return err
	}

	edited, err := editInEditor(a.Config.CLI.Editor, n.Content)
	if err != nil {
		return err
	}
	if strings.TrimSpace(edited) == strings.TrimSpace(n.Content) {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return nil
	}

	if _, err := a.UpdateNote(n.ID, edited); err != nil {
		return err
	}
	logger.Info("edited note", zap.String("id", n.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", n.ID)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.GetNote(args[0])
	if err != nil {
		return err
	}
	if err := a.DeleteNote(n.ID); err != nil {
		return err
	}
	logger.Info("removed note", zap.String("id", n.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", n.ID)
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fromID, toID, err := a.LinkNotes(args[0], linkRel, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -[%s]-> %s\n", shortID(fromID), linkRel, shortID(toID))
	return nil
}

func runLinks(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.GetNote(args[0])
	if err != nil {
		return err
	}
	links, err := a.Links.Neighbors(n.ID, synapse.Both)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No links.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, l := range links {
		arrow := "->"
		other := l.NoteB
		if l.NoteB == n.ID {
			arrow = "<-"
			other = l.NoteA
		}
		fmt.Fprintf(w, "%s %s\t%s\tstrength %.2f\tfired %d\n",
			arrow, shortID(other), l.Relation, l.Strength, l.FireCount)
	}
	return w.Flush()
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.Reindex(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d notes\n", count)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.Report()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Notes:          %d\n", r.NoteCount)
	fmt.Fprintf(out, "Words:          %d (%.1f per note)\n", r.TotalWords, r.AverageWordsPerNote())
	fmt.Fprintf(out, "Links:          %d\n", r.TotalLinks)
	fmt.Fprintf(out, "Mean strength:  %.2f\n", r.MeanStrength)

	if len(r.TopConnected) > 0 {
		fmt.Fprintf(out, "\nMost connected:\n")
		for _, c := range r.TopConnected {
			fmt.Fprintf(out, "  %s  %d links\n", shortID(c.ID), c.Degree)
		}
	}
	if len(r.TopTags) > 0 {
		fmt.Fprintf(out, "\nTop tags:\n")
		for _, tc := range r.TopTags {
			fmt.Fprintf(out, "  %-20s %d\n", tc.Tag, tc.Count)
		}
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(effectiveConfigPath())
	if err != nil {
		return err
	}
	data, err := cfg.Render()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := effectiveConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// shortID shows just the content-hash part of a note ID.
func shortID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}
