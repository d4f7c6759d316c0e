package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse and scan the series library",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library series",
	Long: `List the series tracked by the library scanner.

Examples:
  themarr library list                  # First 100 series
  themarr library list --missing        # Series without a theme song
  themarr library list --title "Lost"   # Exact title match`,
	Args: cobra.NoArgs,
	RunE: runLibraryListCmd,
}

var libraryScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan the library roots",
	Args:  cobra.NoArgs,
	RunE:  runLibraryScanCmd,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryScanCmd)

	libraryListCmd.Flags().IntP("limit", "n", 100, "Number of series to show")
	libraryListCmd.Flags().Int("offset", 0, "Skip this many series")
	libraryListCmd.Flags().String("title", "", "Filter by title")
	libraryListCmd.Flags().Bool("missing", false, "Only show series without a theme song")
}

func runLibraryListCmd(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	title, _ := cmd.Flags().GetString("title")
	missing, _ := cmd.Flags().GetBool("missing")

	series, err := newClient().Series(cmd.Context(), SeriesQuery{Limit: limit, Offset: offset, Title: title})
	if err != nil {
		return fmt.Errorf("failed to list series: %w", err)
	}

	if missing {
		kept := series.Items[:0]
		for _, s := range series.Items {
			if !s.HasTheme {
				kept = append(kept, s)
			}
		}
		series.Items = kept
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, series)
	}
	printSeries(out, series)
	return nil
}

func printSeries(w io.Writer, series *ListSeriesResponse) {
	if len(series.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No series found")
		return
	}

	rows := make([][]string, 0, len(series.Items))
	for _, s := range series.Items {
		year := ""
		if s.Year > 0 {
			year = strconv.Itoa(s.Year)
		}
		tvdb := "-"
		if s.TVDBID != nil {
			tvdb = strconv.FormatInt(*s.TVDBID, 10)
		}
		theme := "no"
		if s.HasTheme {
			theme = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			truncate(s.Title, 40),
			year,
			tvdb,
			theme,
		})
	}
	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"ID", "TITLE", "YEAR", "TVDB", "THEME"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	))
	_, _ = fmt.Fprintf(w, "Showing %d of %d series\n", len(series.Items), series.Total)
}

func runLibraryScanCmd(cmd *cobra.Command, _ []string) error {
	res, err := newClient().ScanLibrary(cmd.Context())
	if err != nil {
		return fmt.Errorf("library scan failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	_, _ = fmt.Fprintf(out, "Library scan complete: %d added, %d updated, %d unchanged\n",
		res.Added, res.Updated, res.Unchanged)
	if res.Resolved > 0 || res.Unresolved > 0 {
		_, _ = fmt.Fprintf(out, "TVDB ids: %d resolved, %d unresolved\n", res.Resolved, res.Unresolved)
	}
	return nil
}
