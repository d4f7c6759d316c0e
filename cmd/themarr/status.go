package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current theme run status",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a theme run",
	Long: `Start downloading theme songs for every series in the catalog.

Examples:
  themarr run           # Start a run and return immediately
  themarr run --wait    # Start a run and follow it until it finishes`,
	Args: cobra.NoArgs,
	RunE: runRunCmd,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the active theme run",
	Args:  cobra.NoArgs,
	RunE:  runCancelCmd,
}

// pollInterval is how often run --wait checks the status.
var pollInterval = 2 * time.Second

func init() {
	rootCmd.AddCommand(statusCmd, runCmd, cancelCmd)
	runCmd.Flags().Bool("wait", false, "Wait for the run to finish")
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	status, err := newClient().Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, status)
	}
	printStatus(out, status, time.Now())
	return nil
}

func printStatus(w io.Writer, s *StatusResponse, now time.Time) {
	state := s.State
	if s.IsRunning {
		state = "running"
	}
	_, _ = fmt.Fprintf(w, "State:      %s\n", state)
	if s.RunID != "" {
		_, _ = fmt.Fprintf(w, "Run:        %s\n", s.RunID)
	}
	_, _ = fmt.Fprintf(w, "Progress:   %.1f%%\n", s.Progress)

	lastRun := "never"
	if s.LastRun != nil {
		lastRun = fmt.Sprintf("%s (%s)", s.LastRun.Local().Format(time.DateTime), formatTimeAgo(*s.LastRun, now))
	}
	_, _ = fmt.Fprintf(w, "Last run:   %s\n", lastRun)
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	wait, _ := cmd.Flags().GetBool("wait")
	client := newClient()
	out := cmd.OutOrStdout()

	started, err := client.StartRun(cmd.Context())
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("start run failed: %w", err)
	}

	if !wait {
		if jsonOutput {
			return printJSON(out, started)
		}
		_, _ = fmt.Fprintf(out, "Started run %s\n", started.RunID)
		return nil
	}

	if !jsonOutput {
		_, _ = fmt.Fprintf(out, "Started run %s, waiting...\n", started.RunID)
	}
	final, err := waitForRun(cmd.Context(), client, started.RunID, func(s *StatusResponse) {
		if !jsonOutput {
			_, _ = fmt.Fprintf(out, "  %5.1f%%\n", s.Progress)
		}
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, final)
	}
	_, _ = fmt.Fprintf(out, "Run %s finished: %s\n", started.RunID, final.State)
	if final.State == "failed" {
		return fmt.Errorf("run %s failed", started.RunID)
	}
	return nil
}

// waitForRun polls until runID is no longer the active run.
func waitForRun(ctx context.Context, client *Client, runID string, progress func(*StatusResponse)) (*StatusResponse, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := -1.0
	for {
		status, err := client.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("status check failed: %w", err)
		}
		if !status.IsRunning || status.RunID != runID {
			return status, nil
		}
		if status.Progress != last {
			last = status.Progress
			progress(status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func runCancelCmd(cmd *cobra.Command, _ []string) error {
	resp, err := newClient().Cancel(cmd.Context())
	if err != nil {
		return fmt.Errorf("cancel failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}
	if resp.Cancelled {
		_, _ = fmt.Fprintln(out, "Cancellation requested")
	} else {
		_, _ = fmt.Fprintln(out, "No run in progress")
	}
	return nil
}
