package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/spf13/cobra"
)

func (c *cli) newMoodCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood",
		Args:  cobra.NoArgs,
		Short: "Track your mood",
	}

	cmd.AddCommand(
		c.newMoodLogCommand(),
		c.newMoodStatsCommand(),
	)

	return cmd
}

func (c *cli) newMoodLogCommand() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "log <1-5>",
		Args:  cobra.ExactArgs(1),
		Short: "Record how you feel, from 1 (very low) to 5 (great)",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("mood must be a number from 1 to 5, got %q", args[0])
			}
			app, err := c.session(cmd, true)
			if err != nil {
				return err
			}
			if _, err := app.Backend.LogMood(cmd.Context(), backend.MoodEntry{Value: value, Notes: strings.TrimSpace(notes)}); err != nil {
				return errors.New(auth.FormMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Mood saved")
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "anything you want to remember about today")
	return cmd
}

func (c *cli) newMoodStatsCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Args:  cobra.NoArgs,
		Short: "Summarise recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, true)
			if err != nil {
				return err
			}
			stats, err := app.Backend.MoodStats(cmd.Context(), days)
			if err != nil {
				return errors.New(auth.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Last %d days\n", days)
			if stats.Count == 0 {
				fmt.Fprintln(out, "No entries yet")
				return nil
			}
			fmt.Fprintf(out, "Entries: %d\nAverage: %.1f\nHighest: %d\nLowest:  %d\nTrend:   %s\n",
				stats.Count, stats.Average, stats.Highest, stats.Lowest, stats.Trend)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "how many days to include")
	return cmd
}
