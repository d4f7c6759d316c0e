package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Long: `Show recent events, newest first.

Examples:
  themarr events                          # Last 20 events
  themarr events --since 24h              # Everything from the last day
  themarr events --type theme.downloaded  # Only downloads`,
	Args: cobra.NoArgs,
	RunE: runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("since", "", "Only events newer than this (duration like 24h, or RFC3339 time)")
	eventsCmd.Flags().String("type", "", "Only events of this type")
}

func runEventsCmd(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	sinceFlag, _ := cmd.Flags().GetString("since")
	eventType, _ := cmd.Flags().GetString("type")

	now := time.Now()
	since, err := parseSince(sinceFlag, now)
	if err != nil {
		return err
	}

	events, err := newClient().Events(cmd.Context(), EventsQuery{Limit: limit, Since: since, Type: eventType})
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, events)
	}
	printEvents(out, events, now)
	return nil
}

// parseSince accepts a duration relative to now or an absolute RFC3339 time.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("invalid --since %q: duration must be positive", s)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want a duration (24h) or RFC3339 time", s)
	}
	return t, nil
}

func printEvents(w io.Writer, events *ListEventsResponse, now time.Time) {
	if len(events.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No events")
		return
	}

	_, _ = fmt.Fprintf(w, "Recent Events (%d of %d):\n", len(events.Items), events.Total)
	rows := make([][]string, 0, len(events.Items))
	for _, e := range events.Items {
		rows = append(rows, []string{
			formatTimeAgo(e.OccurredAt, now),
			e.EventType,
			fmt.Sprintf("%s/%d", e.EntityType, e.EntityID),
			truncate(eventDetail(e.Payload), 50),
		})
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"TIME", "TYPE", "ENTITY", "DETAIL"}, rows, nil))
}

// eventDetail picks the most useful fields out of an event payload.
func eventDetail(payload json.RawMessage) string {
	var p struct {
		Series string `json:"series"`
		State  string `json:"state"`
		Error  string `json:"error"`
		Added  *int   `json:"added"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
		return ""
	}

	var parts []string
	if p.Series != "" {
		parts = append(parts, p.Series)
	}
	if p.State != "" {
		parts = append(parts, p.State)
	}
	if p.Added != nil {
		parts = append(parts, fmt.Sprintf("%d added", *p.Added))
	}
	if p.Error != "" {
		parts = append(parts, p.Error)
	}
	return strings.Join(parts, ": ")
}
